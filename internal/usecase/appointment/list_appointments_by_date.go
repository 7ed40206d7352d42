package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/dto"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(
	repo domain.Repository,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo: repo,
	}
}

// Execute lists the shop agenda of one local date. A nil professionalID
// lists every professional.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	shopID uuid.UUID,
	professionalID *uuid.UUID,
	date string,
) ([]dto.AppointmentListDTO, error) {

	shop, err := uc.repo.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, notFound(err, "shop_not_found")
	}

	day, err := timezone.ParseDate(shop.Timezone, date)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date", "Data inválida.")
	}

	start, end := timezone.DayBounds(day)

	appointments, err := uc.repo.ListAppointmentsForShopPeriod(ctx, shopID, professionalID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return ToListDTO(appointments, timezone.Location(shop.Timezone)), nil
}

// ToListDTO renders appointments in loc, with client, professional and
// service names taken from preloaded associations.
func ToListDTO(appointments []models.Appointment, loc *time.Location) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		names := make([]string, 0, len(ap.Services))
		for _, s := range ap.Services {
			names = append(names, s.Service.Name)
		}
		out = append(out, dto.AppointmentListDTO{
			ID:               ap.ID,
			StartAt:          ap.StartAt.In(loc),
			EndAt:            ap.EndAt.In(loc),
			Status:           ap.Status,
			ClientID:         ap.ClientID,
			ClientName:       ap.Client.Name,
			ProfessionalID:   ap.ProfessionalID,
			ProfessionalName: ap.Professional.Name,
			Services:         names,
			Notes:            ap.Notes,
		})
	}
	return out
}
