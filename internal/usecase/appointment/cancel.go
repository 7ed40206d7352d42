package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

type CancelInput struct {
	ShopID        uuid.UUID
	AppointmentID uuid.UUID
	ActorID       *uuid.UUID

	// ClientID restricts the cancellation to the client's own future
	// appointments.
	ClientID *uuid.UUID
}

type CancelAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	rt    *Runtime
}

func NewCancelAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rt *Runtime,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		audit: audit,
		rt:    rt.withDefaults(),
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in CancelInput,
) (*models.Appointment, error) {

	shop, ap, err := load(ctx, uc.repo, in.ShopID, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if in.ClientID != nil {
		if ap.ClientID != *in.ClientID {
			return nil, httperr.ErrNotFound("appointment_not_found")
		}
		if !ap.StartAt.After(uc.rt.Now()) {
			return nil, httperr.ErrBusiness("appointment_in_past")
		}
	}

	return save(ctx, uc.repo, uc.audit, uc.rt, shop, ap, in.ActorID, "appointment_cancelled",
		func(ap *models.Appointment, now time.Time) error {
			return domain.Cancel(ap, now)
		})
}
