package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/dto"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

type ListAppointmentsByMonth struct {
	repo domain.Repository
}

func NewListAppointmentsByMonth(
	repo domain.Repository,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo: repo,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	shopID uuid.UUID,
	professionalID *uuid.UUID,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, httperr.ErrValidation("invalid_year_or_month", "Ano ou mês inválido.")
	}

	shop, err := uc.repo.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, notFound(err, "shop_not_found")
	}

	loc := timezone.Location(shop.Timezone)
	start, end := timezone.MonthBounds(year, time.Month(month), loc)

	appointments, err := uc.repo.ListAppointmentsForShopPeriod(ctx, shopID, professionalID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return ToListDTO(appointments, loc), nil
}

type ListClientAppointments struct {
	repo domain.Repository
}

func NewListClientAppointments(repo domain.Repository) *ListClientAppointments {
	return &ListClientAppointments{repo: repo}
}

func (uc *ListClientAppointments) Execute(
	ctx context.Context,
	shopID uuid.UUID,
	clientID uuid.UUID,
) ([]dto.AppointmentListDTO, error) {

	shop, err := uc.repo.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, notFound(err, "shop_not_found")
	}

	appointments, err := uc.repo.ListAppointmentsForClient(ctx, shopID, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client appointments: %w", err)
	}

	return ToListDTO(appointments, timezone.Location(shop.Timezone)), nil
}
