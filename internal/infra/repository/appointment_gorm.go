package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

const idempotencyIndex = "idx_appointments_idempotency"

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// first maps gorm.ErrRecordNotFound to domain.ErrNotFound.
func first(q *gorm.DB, dest any) error {
	err := q.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Shop
// --------------------------------------------------

func (r *AppointmentGormRepository) GetShopByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Shop, error) {

	var shop models.Shop
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *AppointmentGormRepository) GetShopBySlug(
	ctx context.Context,
	slug string,
) (*models.Shop, error) {

	var shop models.Shop
	if err := first(r.db.WithContext(ctx).Where("slug = ?", slug), &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessional(
	ctx context.Context,
	shopID uuid.UUID,
	professionalID uuid.UUID,
) (*models.Professional, error) {

	var p models.Professional
	q := r.db.WithContext(ctx).Where("id = ? AND shop_id = ?", professionalID, shopID)
	if err := first(q, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *AppointmentGormRepository) GetServices(
	ctx context.Context,
	shopID uuid.UUID,
	ids []uuid.UUID,
) ([]models.Service, error) {

	if len(ids) == 0 {
		return nil, nil
	}

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	shopID uuid.UUID,
	clientID uuid.UUID,
) (*models.Client, error) {

	var client models.Client
	q := r.db.WithContext(ctx).Where("id = ? AND shop_id = ?", clientID, shopID)
	if err := first(q, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// GetOrCreateClient finds the shop's client by phone or inserts it. Two
// concurrent calls for one phone meet at models.ClientPhoneIndex: the
// loser's insert does nothing and it reads the winner's row.
func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	shopID uuid.UUID,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	byPhone := func(dest *models.Client) error {
		return first(r.db.WithContext(ctx).
			Where("shop_id = ? AND phone = ?", shopID, phone), dest)
	}

	var client models.Client
	err := byPhone(&client)
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	client = models.Client{
		ShopID: shopID,
		Name:   name,
		Phone:  phone,
		Email:  email,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&client)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return &client, nil
	}

	var winner models.Client
	if err := byPhone(&winner); err != nil {
		return nil, fmt.Errorf("reread client after conflict: %w", err)
	}
	return &winner, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) ListBusinessHours(
	ctx context.Context,
	shopID uuid.UUID,
) ([]models.BusinessHours, error) {

	var rows []models.BusinessHours
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("weekday ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	professionalID uuid.UUID,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "professional_id", "start_at", "end_at", "status").
		Where(
			"professional_id = ? AND start_at < ? AND end_at > ?",
			professionalID, end, start,
		).
		Order("start_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListTimeOff(
	ctx context.Context,
	shopID uuid.UUID,
	professionalID *uuid.UUID,
	start time.Time,
	end time.Time,
) ([]models.TimeOff, error) {

	q := r.db.WithContext(ctx).
		Where("shop_id = ? AND start_at < ? AND end_at > ?", shopID, end, start)

	if professionalID != nil {
		q = q.Where("(professional_id IS NULL OR professional_id = ?)", *professionalID)
	}

	var rows []models.TimeOff
	if err := q.Order("start_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) FindByIdempotencyKey(
	ctx context.Context,
	shopID uuid.UUID,
	key string,
) (*models.Appointment, error) {

	var ap models.Appointment
	q := r.db.WithContext(ctx).
		Preload("Services").
		Where("shop_id = ? AND idempotency_key = ?", shopID, key)
	if err := first(q, &ap); err != nil {
		return nil, err
	}
	return &ap, nil
}

// CreateAppointment inserts the row and its services in one transaction.
// The exclusion constraint decides overlaps at commit.
func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(ap).Error
	})
	return translateWriteError(err)
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	shopID uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Professional").
		Preload("Services.Service").
		Where("id = ? AND shop_id = ?", appointmentID, shopID)
	if err := first(q, &ap); err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND shop_id = ?", ap.ID, ap.ShopID).
		Updates(map[string]any{
			"status":       ap.Status,
			"notes":        ap.Notes,
			"cancelled_at": ap.CancelledAt,
			"completed_at": ap.CompletedAt,
			"updated_at":   time.Now(),
		}).Error
	return translateWriteError(err)
}

func (r *AppointmentGormRepository) ListAppointmentsForShopPeriod(
	ctx context.Context,
	shopID uuid.UUID,
	professionalID *uuid.UUID,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Professional").
		Preload("Services.Service").
		Where("shop_id = ? AND start_at >= ? AND start_at < ?", shopID, start, end)

	if professionalID != nil {
		q = q.Where("professional_id = ?", *professionalID)
	}

	var apps []models.Appointment
	if err := q.Order("start_at ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForClient(
	ctx context.Context,
	shopID uuid.UUID,
	clientID uuid.UUID,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Professional").
		Preload("Services.Service").
		Where("shop_id = ? AND client_id = ?", shopID, clientID).
		Order("start_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func translateWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case httperr.IsExclusionConflict(err):
		return httperr.ErrConflict("time_conflict")
	case httperr.IsUniqueViolation(err, idempotencyIndex):
		return domain.ErrDuplicateIdempotencyKey
	default:
		return fmt.Errorf("write appointment: %w", err)
	}
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
