package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
)

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	rt    *Runtime
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rt *Runtime,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: audit,
		rt:    rt.withDefaults(),
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	shopID uuid.UUID,
	actorID *uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	shop, ap, err := load(ctx, uc.repo, shopID, appointmentID)
	if err != nil {
		return nil, err
	}

	return save(ctx, uc.repo, uc.audit, uc.rt, shop, ap, actorID, "appointment_completed",
		func(ap *models.Appointment, now time.Time) error {
			return domain.Complete(ap, now)
		})
}
