package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/domain/availability"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

type GetAvailabilityInput struct {
	ShopID         uuid.UUID
	ProfessionalID uuid.UUID
	Date           string // 2006-01-02, shop timezone

	// ServiceIDs win over DurationMinutes when present.
	ServiceIDs      []uuid.UUID
	DurationMinutes int
}

type GetAvailability struct {
	repo domain.Repository
	rt   *Runtime
}

func NewGetAvailability(repo domain.Repository, rt *Runtime) *GetAvailability {
	return &GetAvailability{repo: repo, rt: rt.withDefaults()}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in GetAvailabilityInput,
) (slots []availability.Slot, err error) {

	ctx, span := tracer.Start(ctx, "GetAvailability", trace.WithAttributes(
		attribute.String("shop.id", in.ShopID.String()),
		attribute.String("professional.id", in.ProfessionalID.String()),
		attribute.String("date", in.Date),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	began := time.Now()

	// --------------------------------------------------
	// Barbearia + data no timezone da barbearia
	// --------------------------------------------------
	shop, err := uc.repo.GetShopByID(ctx, in.ShopID)
	if err != nil {
		return nil, notFound(err, "shop_not_found")
	}

	loc := timezone.Location(shop.Timezone)
	date, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date", "Data inválida.")
	}

	now := uc.rt.Now().In(loc)
	today := availability.DayWindow(now).Start
	if date.Before(today) {
		return nil, httperr.ErrValidation("date_in_past", "Data no passado.")
	}
	if beyondHorizon(date, now, uc.rt.BookingHorizonDays) {
		return nil, httperr.ErrValidation("date_out_of_range", "Data fora do período de agendamento.")
	}

	// --------------------------------------------------
	// Profissional
	// --------------------------------------------------
	prof, err := uc.repo.GetProfessional(ctx, in.ShopID, in.ProfessionalID)
	if err != nil {
		return nil, notFound(err, "professional_not_found")
	}
	if !prof.Active {
		return []availability.Slot{}, nil
	}

	// --------------------------------------------------
	// Duração
	// --------------------------------------------------
	duration, err := uc.duration(ctx, in)
	if err != nil {
		return nil, err
	}

	step := uc.rt.SlotStep
	if step <= 0 {
		step = duration
	}

	bucket := availabilityBucket(in.ShopID)
	field := availabilityField(in.ProfessionalID, in.Date, duration, step)

	source := "cache"
	slots, gen, ok := uc.rt.cachedSlots(ctx, bucket, field)
	if !ok {
		source = "computed"
		slots, err = uc.compute(ctx, shop, prof.ID, date, duration, step)
		if err != nil {
			return nil, err
		}
		uc.rt.storeSlots(ctx, bucket, gen, field, slots)
	}

	notBefore := now.Add(time.Duration(shop.MinAdvanceMinutes) * time.Minute)
	slots = availability.DropBefore(slots, notBefore)
	for i := range slots {
		slots[i].Start = slots[i].Start.In(loc)
		slots[i].End = slots[i].End.In(loc)
	}

	uc.rt.Metrics.ObserveSlotListing(source, time.Since(began).Seconds())
	span.SetAttributes(attribute.Int("slots", len(slots)), attribute.String("source", source))

	return slots, nil
}

func (uc *GetAvailability) duration(ctx context.Context, in GetAvailabilityInput) (time.Duration, error) {
	if len(in.ServiceIDs) == 0 {
		if in.DurationMinutes <= 0 {
			return 0, httperr.ErrValidation("invalid_duration", "Duração deve ser positiva.")
		}
		return time.Duration(in.DurationMinutes) * time.Minute, nil
	}

	services, err := loadServices(ctx, uc.repo, in.ShopID, in.ServiceIDs)
	if err != nil {
		return 0, err
	}
	return totalDuration(services), nil
}

// compute lists the day's free slots without the "now" cut, so the result
// can be cached for the whole day.
func (uc *GetAvailability) compute(
	ctx context.Context,
	shop *models.Shop,
	professionalID uuid.UUID,
	date time.Time,
	duration time.Duration,
	step time.Duration,
) ([]availability.Slot, error) {

	hours, err := uc.repo.ListBusinessHours(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("list business hours: %w", err)
	}

	window := availability.DayWindow(date)

	apps, err := uc.repo.ListAppointmentsForPeriod(ctx, professionalID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	offs, err := uc.repo.ListTimeOff(ctx, shop.ID, &professionalID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("list time off: %w", err)
	}

	return availability.Compute(availability.Input{
		Date:           date,
		Schedule:       toSchedule(hours),
		ProfessionalID: professionalID,
		Appointments:   toAppointmentSpans(apps),
		TimeOff:        toTimeOffSpans(offs),
		Duration:       duration,
		Step:           step,
		Policy:         uc.rt.policy(),
	})
}

// beyondHorizon reports whether t falls on a calendar day after the last
// bookable one. days <= 0 disables the horizon.
func beyondHorizon(t, now time.Time, days int) bool {
	if days <= 0 {
		return false
	}
	last := availability.DayWindow(now).Start.AddDate(0, 0, days)
	return !t.Before(last.AddDate(0, 0, 1))
}

// ======================================================
// Services
// ======================================================

// loadServices resolves ids to active services of the shop. Duplicated ids
// are booked once.
func loadServices(
	ctx context.Context,
	repo domain.Repository,
	shopID uuid.UUID,
	ids []uuid.UUID,
) ([]models.Service, error) {

	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	services, err := repo.GetServices(ctx, shopID, unique)
	if err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	if len(services) != len(unique) {
		return nil, httperr.ErrValidation("service_not_found", "Serviço não encontrado.")
	}
	for _, s := range services {
		if !s.Active {
			return nil, httperr.ErrValidation("service_inactive", "Serviço indisponível.")
		}
		if s.DurationMinutes <= 0 {
			return nil, httperr.ErrValidation("invalid_duration", "Duração deve ser positiva.")
		}
	}
	return services, nil
}

func totalDuration(services []models.Service) time.Duration {
	total := 0
	for _, s := range services {
		total += s.DurationMinutes
	}
	return time.Duration(total) * time.Minute
}
