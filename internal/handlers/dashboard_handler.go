package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/dto"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

const upcomingLimit = 10

type DashboardHandler struct {
	db     *gorm.DB
	logger *logging.Logger
}

func NewDashboardHandler(db *gorm.DB, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{db: db, logger: logger}
}

type DashboardResponse struct {
	AppointmentsToday   int64                    `json:"appointments_today"`
	AppointmentsMonth   int64                    `json:"appointments_month"`
	PendingAppointments int64                    `json:"pending_appointments"`
	ActiveServices      int64                    `json:"active_services"`
	ActiveProfessionals int64                    `json:"active_professionals"`
	TotalClients        int64                    `json:"total_clients"`
	Upcoming            []dto.AppointmentListDTO `json:"upcoming"`
}

// not counted as agenda load
var inactiveStatuses = []string{string(domain.StatusCancelled), string(domain.StatusNoShow)}

// count degrades to zero on error.
func (h *DashboardHandler) count(name string, q *gorm.DB) int64 {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		h.logger.Warn("dashboard counter failed", "counter", name, "err", err)
		return 0
	}
	return n
}

func (h *DashboardHandler) Get(c *gin.Context) {
	shopID := middleware.ShopID(c)

	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", shopID).Error; err != nil {
		httperr.NotFound(c, "shop_not_found", "Barbearia não encontrada.")
		return
	}

	loc := timezone.Location(shop.Timezone)
	now := nowInShop(&shop)
	dayStart, dayEnd := timezone.DayBounds(now)
	monthStart, monthEnd := timezone.MonthBounds(now.Year(), now.Month(), loc)

	appointments := func() *gorm.DB {
		return h.db.Model(&models.Appointment{}).Where("shop_id = ?", shopID)
	}

	resp := DashboardResponse{
		AppointmentsToday: h.count("today", appointments().
			Where("start_at >= ? AND start_at < ?", dayStart, dayEnd).
			Where("status NOT IN ?", inactiveStatuses)),
		AppointmentsMonth: h.count("month", appointments().
			Where("start_at >= ? AND start_at < ?", monthStart, monthEnd).
			Where("status NOT IN ?", inactiveStatuses)),
		PendingAppointments: h.count("pending", appointments().
			Where("status = ? AND start_at >= ?", string(domain.StatusPending), now)),
		ActiveServices: h.count("services", h.db.Model(&models.Service{}).
			Where("shop_id = ? AND active = ?", shopID, true)),
		ActiveProfessionals: h.count("professionals", h.db.Model(&models.Professional{}).
			Where("shop_id = ? AND active = ?", shopID, true)),
		TotalClients: h.count("clients", h.db.Model(&models.Client{}).
			Where("shop_id = ?", shopID)),
		Upcoming: h.upcoming(shopID, now),
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) upcoming(shopID uuid.UUID, now time.Time) []dto.AppointmentListDTO {
	var rows []models.Appointment
	err := h.db.
		Preload("Client").
		Preload("Professional").
		Preload("Services.Service").
		Where("shop_id = ? AND start_at >= ?", shopID, now).
		Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusConfirmed)}).
		Order("start_at ASC").
		Limit(upcomingLimit).
		Find(&rows).Error
	if err != nil {
		h.logger.Warn("dashboard upcoming failed", "err", err)
		return []dto.AppointmentListDTO{}
	}
	return appointment.ToListDTO(rows, now.Location())
}
