package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateIdempotencyKey is returned by CreateAppointment when the
	// shop already holds an appointment for the same key.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

type Repository interface {
	// -------- Shop --------
	GetShopByID(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Shop, error)

	GetShopBySlug(
		ctx context.Context,
		slug string,
	) (*models.Shop, error)

	// -------- Catalog --------
	GetProfessional(
		ctx context.Context,
		shopID uuid.UUID,
		professionalID uuid.UUID,
	) (*models.Professional, error)

	// GetServices returns the services of the shop among ids, in any order.
	GetServices(
		ctx context.Context,
		shopID uuid.UUID,
		ids []uuid.UUID,
	) ([]models.Service, error)

	// -------- Client --------
	GetClient(
		ctx context.Context,
		shopID uuid.UUID,
		clientID uuid.UUID,
	) (*models.Client, error)

	GetOrCreateClient(
		ctx context.Context,
		shopID uuid.UUID,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Availability --------
	ListBusinessHours(
		ctx context.Context,
		shopID uuid.UUID,
	) ([]models.BusinessHours, error)

	// ListAppointmentsForPeriod returns the professional's appointments
	// overlapping [start, end), any status.
	ListAppointmentsForPeriod(
		ctx context.Context,
		professionalID uuid.UUID,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// ListTimeOff returns shop-wide rows plus the professional's own rows
	// overlapping [start, end). A nil professionalID returns every row.
	ListTimeOff(
		ctx context.Context,
		shopID uuid.UUID,
		professionalID *uuid.UUID,
		start time.Time,
		end time.Time,
	) ([]models.TimeOff, error)

	// -------- Appointment --------
	FindByIdempotencyKey(
		ctx context.Context,
		shopID uuid.UUID,
		key string,
	) (*models.Appointment, error)

	// CreateAppointment inserts the appointment and its service rows in one
	// transaction. An overlap returns a ConflictError.
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		shopID uuid.UUID,
		appointmentID uuid.UUID,
	) (*models.Appointment, error)

	// UpdateAppointment saves status fields. An overlap returns a ConflictError.
	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsForShopPeriod(
		ctx context.Context,
		shopID uuid.UUID,
		professionalID *uuid.UUID,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForClient(
		ctx context.Context,
		shopID uuid.UUID,
		clientID uuid.UUID,
	) ([]models.Appointment, error)
}
