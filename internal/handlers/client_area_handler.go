package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

// ClientAreaHandler serves logged-in clients. The client id always comes
// from the token.
type ClientAreaHandler struct {
	list   *appointment.ListClientAppointments
	create *appointment.CreateAppointment
	cancel *appointment.CancelAppointment
}

func NewClientAreaHandler(
	list *appointment.ListClientAppointments,
	create *appointment.CreateAppointment,
	cancel *appointment.CancelAppointment,
) *ClientAreaHandler {
	return &ClientAreaHandler{list: list, create: create, cancel: cancel}
}

type ClientBookRequest struct {
	ProfessionalID uuid.UUID   `json:"professional_id" binding:"required"`
	ServiceIDs     []uuid.UUID `json:"service_ids" binding:"required,min=1"`
	Date           string      `json:"date" binding:"required,datetime=2006-01-02"`
	Time           string      `json:"time" binding:"required,clock"`
	Notes          string      `json:"notes" binding:"max=500"`
}

func (h *ClientAreaHandler) clientID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.ClientID(c)
	if !ok {
		httperr.Forbidden(c, "client_only", "Disponível apenas para clientes.")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ClientAreaHandler) List(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}

	list, err := h.list.Execute(c.Request.Context(), middleware.ShopID(c), clientID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ClientAreaHandler) Book(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}

	var req ClientBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	res, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		ShopID:           middleware.ShopID(c),
		ActorID:          actorOf(c),
		Channel:          appointment.ChannelClient,
		ClientID:         &clientID,
		ProfessionalID:   req.ProfessionalID,
		ServiceIDs:       req.ServiceIDs,
		Date:             req.Date,
		Time:             req.Time,
		Notes:            req.Notes,
		IdempotencyKey:   c.GetHeader(IdempotencyKeyHeader),
		RequireOpenHours: true,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	writeCreated(c, res)
}

func (h *ClientAreaHandler) Cancel(c *gin.Context) {
	clientID, ok := h.clientID(c)
	if !ok {
		return
	}

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), appointment.CancelInput{
		ShopID:        middleware.ShopID(c),
		AppointmentID: id,
		ActorID:       actorOf(c),
		ClientID:      &clientID,
	})
	if err != nil {
		if httperr.IsBusiness(err, "appointment_in_past") {
			httperr.BadRequest(c, "appointment_in_past", "Não é possível cancelar um horário que já passou.")
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}
