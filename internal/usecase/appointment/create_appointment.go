package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/domain/availability"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

const (
	ChannelStaff  = "staff"
	ChannelPublic = "public"
	ChannelClient = "client"
)

type CreateAppointmentInput struct {
	ShopID  uuid.UUID
	ActorID *uuid.UUID
	Channel string

	// ClientID wins; otherwise the client is found or created by phone.
	ClientID    *uuid.UUID
	ClientName  string
	ClientPhone string
	ClientEmail string

	ProfessionalID uuid.UUID
	ServiceIDs     []uuid.UUID

	// StartAt wins over Date + Time.
	StartAt *time.Time
	Date    string
	Time    string

	// Optional. Must match the service total when services are given.
	EndAt           *time.Time
	DurationMinutes int

	Notes          string
	IdempotencyKey string

	// RequireOpenHours rejects starts outside business hours or inside
	// time-off. Self-service flows set it; staff may book freely.
	RequireOpenHours bool
}

type CreateAppointmentResult struct {
	Appointment *models.Appointment
	Replayed    bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	rt    *Runtime
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	rt *Runtime,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
		rt:    rt.withDefaults(),
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (res *CreateAppointmentResult, err error) {

	ctx, span := tracer.Start(ctx, "CreateAppointment", trace.WithAttributes(
		attribute.String("shop.id", in.ShopID.String()),
		attribute.String("professional.id", in.ProfessionalID.String()),
		attribute.String("channel", in.Channel),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// --------------------------------------------------
	// 1. Barbearia
	// --------------------------------------------------
	shop, err := uc.repo.GetShopByID(ctx, in.ShopID)
	if err != nil {
		return nil, notFound(err, "shop_not_found")
	}

	// --------------------------------------------------
	// 2. Idempotency-Key
	// --------------------------------------------------
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := uc.repo.FindByIdempotencyKey(ctx, in.ShopID, key)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find idempotency key: %w", err)
		}
		if existing != nil {
			return &CreateAppointmentResult{Appointment: existing, Replayed: true}, nil
		}
	}

	// --------------------------------------------------
	// 3. Início no timezone da barbearia
	// --------------------------------------------------
	loc := timezone.Location(shop.Timezone)
	start, err := startOf(in, loc)
	if err != nil {
		return nil, err
	}

	now := uc.rt.Now().In(loc)
	if !start.After(now) {
		return nil, httperr.ErrValidation("date_in_past", "Horário no passado.")
	}
	if in.RequireOpenHours {
		minAllowed := now.Add(time.Duration(shop.MinAdvanceMinutes) * time.Minute)
		if start.Before(minAllowed) {
			return nil, httperr.ErrBusiness("too_soon")
		}
		if beyondHorizon(start, now, uc.rt.BookingHorizonDays) {
			return nil, httperr.ErrValidation("date_out_of_range", "Data fora do período de agendamento.")
		}
	}

	// --------------------------------------------------
	// 4. Profissional
	// --------------------------------------------------
	prof, err := uc.repo.GetProfessional(ctx, in.ShopID, in.ProfessionalID)
	if err != nil {
		return nil, invalidRef(err, "professional_not_found", "Profissional não encontrado.")
	}
	if !prof.Active {
		return nil, httperr.ErrValidation("professional_inactive", "Profissional indisponível.")
	}

	// --------------------------------------------------
	// 5. Serviços + fim
	// --------------------------------------------------
	var services []models.Service
	if len(in.ServiceIDs) > 0 {
		services, err = loadServices(ctx, uc.repo, in.ShopID, in.ServiceIDs)
		if err != nil {
			return nil, err
		}
	}

	end, err := uc.endOf(in, start, services)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6. Expediente + folgas
	// --------------------------------------------------
	if in.RequireOpenHours {
		if err := uc.assertBookable(ctx, shop.ID, prof.ID, availability.Interval{Start: start, End: end}); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 7. Cliente
	// --------------------------------------------------
	client, err := uc.client(ctx, in)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 8. Criação atômica (constraint de sobreposição)
	// --------------------------------------------------
	ap := &models.Appointment{
		ShopID:         in.ShopID,
		ProfessionalID: prof.ID,
		ClientID:       client.ID,
		StartAt:        start,
		EndAt:          end,
		Status:         string(domain.InitialStatus()),
		Notes:          strings.TrimSpace(in.Notes),
	}
	if key != "" {
		ap.IdempotencyKey = &key
	}
	for _, s := range services {
		ap.Services = append(ap.Services, models.AppointmentService{
			ServiceID:       s.ID,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		})
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		switch {
		case httperr.IsConflict(err):
			uc.rt.Metrics.ObserveConflict(in.Channel)
			uc.audit.Dispatch(audit.Event{
				ShopID: in.ShopID,
				UserID: in.ActorID,
				Action: "appointment_conflict",
				Entity: "appointment",
				Metadata: map[string]any{
					"professional_id": prof.ID,
					"start":           start,
					"end":             end,
				},
			})
			return nil, err

		case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
			existing, ferr := uc.repo.FindByIdempotencyKey(ctx, in.ShopID, key)
			if ferr != nil {
				return nil, fmt.Errorf("reload idempotent appointment: %w", ferr)
			}
			return &CreateAppointmentResult{Appointment: existing, Replayed: true}, nil

		default:
			return nil, fmt.Errorf("create appointment: %w", err)
		}
	}

	// --------------------------------------------------
	// 9. Auditoria, métricas, cache
	// --------------------------------------------------
	uc.rt.Metrics.ObserveBooking(in.Channel)
	uc.rt.invalidate(ctx, in.ShopID)

	uc.audit.Dispatch(audit.Event{
		ShopID:   in.ShopID,
		UserID:   in.ActorID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"channel": in.Channel},
	})

	span.SetAttributes(attribute.String("appointment.id", ap.ID.String()))
	return &CreateAppointmentResult{Appointment: ap}, nil
}

func startOf(in CreateAppointmentInput, loc *time.Location) (time.Time, error) {
	if in.StartAt != nil {
		return in.StartAt.In(loc), nil
	}
	if in.Date == "" || in.Time == "" {
		return time.Time{}, httperr.ErrValidation("invalid_date_or_time", "Data ou hora inválida.")
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, loc)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_date_or_time", "Data ou hora inválida.")
	}
	return start, nil
}

func (uc *CreateAppointment) endOf(in CreateAppointmentInput, start time.Time, services []models.Service) (time.Time, error) {
	if in.DurationMinutes < 0 {
		return time.Time{}, httperr.ErrValidation("invalid_duration", "Duração deve ser positiva.")
	}

	fallback := uc.rt.DefaultDuration
	if in.DurationMinutes > 0 {
		fallback = time.Duration(in.DurationMinutes) * time.Minute
	}
	if len(services) == 0 && in.EndAt != nil {
		fallback = in.EndAt.Sub(start)
	}

	end := domain.EndFromServices(start, services, fallback)
	if !end.After(start) {
		return time.Time{}, httperr.ErrValidation("invalid_interval", "Fim deve ser após o início.")
	}
	if in.EndAt != nil && !in.EndAt.Equal(end) {
		return time.Time{}, httperr.ErrValidation("end_mismatch", "Fim não corresponde à duração dos serviços.")
	}
	return end, nil
}

// assertBookable checks business hours and time-off. Overlap with other
// appointments is left to the database constraint.
func (uc *CreateAppointment) assertBookable(
	ctx context.Context,
	shopID uuid.UUID,
	professionalID uuid.UUID,
	candidate availability.Interval,
) error {

	hours, err := uc.repo.ListBusinessHours(ctx, shopID)
	if err != nil {
		return fmt.Errorf("list business hours: %w", err)
	}

	window := availability.DayWindow(candidate.Start)
	offs, err := uc.repo.ListTimeOff(ctx, shopID, &professionalID, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("list time off: %w", err)
	}

	schedule := toSchedule(hours)
	if open, ok := schedule.Resolve(candidate.Start); !ok || !open.Contains(candidate) {
		return httperr.ErrBusiness("outside_working_hours")
	}

	busy := availability.CollectBusy(window, professionalID, nil, toTimeOffSpans(offs), uc.rt.policy())
	if !availability.Admits(schedule, candidate, busy) {
		return httperr.ErrBusiness("professional_unavailable")
	}
	return nil
}

func (uc *CreateAppointment) client(ctx context.Context, in CreateAppointmentInput) (*models.Client, error) {
	if in.ClientID != nil {
		c, err := uc.repo.GetClient(ctx, in.ShopID, *in.ClientID)
		if err != nil {
			return nil, invalidRef(err, "client_not_found", "Cliente não encontrado.")
		}
		return c, nil
	}

	name := strings.TrimSpace(in.ClientName)
	phone := strings.TrimSpace(in.ClientPhone)
	if name == "" || phone == "" {
		return nil, httperr.ErrValidation("client_required", "Nome e telefone do cliente são obrigatórios.")
	}

	c, err := uc.repo.GetOrCreateClient(ctx, in.ShopID, name, phone, strings.TrimSpace(in.ClientEmail))
	if err != nil {
		return nil, fmt.Errorf("get or create client: %w", err)
	}
	return c, nil
}
