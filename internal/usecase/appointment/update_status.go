package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

type UpdateStatusInput struct {
	ShopID        uuid.UUID
	AppointmentID uuid.UUID
	ActorID       *uuid.UUID
	Status        string

	// Override skips the state machine. The overlap rule still applies.
	Override bool
}

type UpdateAppointmentStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	rt    *Runtime
}

func NewUpdateAppointmentStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rt *Runtime,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:  repo,
		audit: audit,
		rt:    rt.withDefaults(),
	}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	shop, ap, err := load(ctx, uc.repo, in.ShopID, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	return save(ctx, uc.repo, uc.audit, uc.rt, shop, ap, in.ActorID, "appointment_status_changed",
		func(ap *models.Appointment, now time.Time) error {
			return domain.ChangeStatus(ap, to, now, in.Override)
		})
}

// ======================================================
// Shared by status, cancel and complete
// ======================================================

func load(
	ctx context.Context,
	repo domain.Repository,
	shopID uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Shop, *models.Appointment, error) {

	shop, err := repo.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, nil, notFound(err, "shop_not_found")
	}

	ap, err := repo.GetAppointment(ctx, shopID, appointmentID)
	if err != nil {
		return nil, nil, notFound(err, "appointment_not_found")
	}

	return shop, ap, nil
}

func save(
	ctx context.Context,
	repo domain.Repository,
	dispatcher *audit.Dispatcher,
	rt *Runtime,
	shop *models.Shop,
	ap *models.Appointment,
	actorID *uuid.UUID,
	action string,
	apply func(ap *models.Appointment, now time.Time) error,
) (*models.Appointment, error) {

	from := ap.Status
	now := rt.Now().In(timezone.Location(shop.Timezone))

	if err := apply(ap, now); err != nil {
		return nil, err
	}

	// reabrir um cancelado passa de novo pela constraint
	if err := repo.UpdateAppointment(ctx, ap); err != nil {
		if httperr.IsConflict(err) {
			rt.Metrics.ObserveConflict("status")
			return nil, err
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	rt.invalidate(ctx, shop.ID)

	dispatcher.Dispatch(audit.Event{
		ShopID:   shop.ID,
		UserID:   actorID,
		Action:   action,
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": from, "to": ap.Status},
	})

	return ap, nil
}
