package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *appointment.CreateAppointment
	availability *appointment.GetAvailability
	status       *appointment.UpdateAppointmentStatus
	complete     *appointment.CompleteAppointment
	cancel       *appointment.CancelAppointment
	listByDate   *appointment.ListAppointmentsByDate
	listByMonth  *appointment.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	create *appointment.CreateAppointment,
	availability *appointment.GetAvailability,
	status *appointment.UpdateAppointmentStatus,
	complete *appointment.CompleteAppointment,
	cancel *appointment.CancelAppointment,
	listByDate *appointment.ListAppointmentsByDate,
	listByMonth *appointment.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		availability: availability,
		status:       status,
		complete:     complete,
		cancel:       cancel,
		listByDate:   listByDate,
		listByMonth:  listByMonth,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientID    *uuid.UUID `json:"client_id"`
	ClientName  string     `json:"client_name" binding:"max=100"`
	ClientPhone string     `json:"client_phone" binding:"max=20"`
	ClientEmail string     `json:"client_email" binding:"omitempty,email"`

	ProfessionalID uuid.UUID   `json:"professional_id" binding:"required"`
	ServiceIDs     []uuid.UUID `json:"service_ids"`

	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
	Date    string     `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time    string     `json:"time" binding:"omitempty,clock"`

	DurationMinutes int    `json:"duration_minutes" binding:"min=0,max=720"`
	Notes           string `json:"notes" binding:"max=500"`
}

type UpdateStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Override bool   `json:"override"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	res, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		ShopID:          middleware.ShopID(c),
		ActorID:         actorOf(c),
		Channel:         appointment.ChannelStaff,
		ClientID:        req.ClientID,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ClientEmail:     req.ClientEmail,
		ProfessionalID:  req.ProfessionalID,
		ServiceIDs:      req.ServiceIDs,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		IdempotencyKey:  c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	writeCreated(c, res)
}

// writeCreated answers 201, or 200 when an Idempotency-Key replayed an
// earlier booking.
func writeCreated(c *gin.Context, res *appointment.CreateAppointmentResult) {
	if res.Replayed {
		c.Header("Idempotent-Replayed", "true")
		c.JSON(http.StatusOK, res.Appointment)
		return
	}
	c.JSON(http.StatusCreated, res.Appointment)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	in, ok := availabilityQuery(c)
	if !ok {
		return
	}
	in.ShopID = middleware.ShopID(c)

	slots, err := h.availability.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  in.Date,
		"slots": slots,
	})
}

// availabilityQuery reads professional_id, date and either service_ids or
// duration from the query string.
func availabilityQuery(c *gin.Context) (appointment.GetAvailabilityInput, bool) {
	var in appointment.GetAvailabilityInput

	profID, err := uuid.Parse(c.Query("professional_id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
		return in, false
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return in, false
	}

	serviceIDs, err := uuidList(c.QueryArray("service_ids"))
	if err != nil {
		httperr.BadRequest(c, "invalid_service_ids", "Serviço inválido.")
		return in, false
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
			return in, false
		}
	}

	in.ProfessionalID = profID
	in.Date = date
	in.ServiceIDs = serviceIDs
	in.DurationMinutes = duration
	return in, true
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	profID, ok := optionalUUIDQuery(c, "professional_id")
	if !ok {
		return
	}

	list, err := h.listByDate.Execute(c.Request.Context(), middleware.ShopID(c), profID, dateStr)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Ano e mês são obrigatórios.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	profID, ok := optionalUUIDQuery(c, "professional_id")
	if !ok {
		return
	}

	list, err := h.listByMonth.Execute(c.Request.Context(), middleware.ShopID(c), profID, year, month)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": list,
	})
}

// ======================================================
// STATUS / COMPLETE / CANCEL
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	if req.Override && !permissions.Can(middleware.Role(c), permissions.OverrideStatus) {
		httperr.Forbidden(c, "override_not_allowed", "Apenas administradores podem forçar o status.")
		return
	}

	ap, err := h.status.Execute(c.Request.Context(), appointment.UpdateStatusInput{
		ShopID:        middleware.ShopID(c),
		AppointmentID: id,
		ActorID:       actorOf(c),
		Status:        req.Status,
		Override:      req.Override,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), middleware.ShopID(c), actorOf(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), appointment.CancelInput{
		ShopID:        middleware.ShopID(c),
		AppointmentID: id,
		ActorID:       actorOf(c),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}
