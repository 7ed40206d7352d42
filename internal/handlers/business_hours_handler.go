package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/domain/availability"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

type BusinessHoursHandler struct {
	db           *gorm.DB
	audit        *audit.Dispatcher
	availability *appointment.AvailabilityCache
}

func NewBusinessHoursHandler(
	db *gorm.DB,
	audit *audit.Dispatcher,
	availability *appointment.AvailabilityCache,
) *BusinessHoursHandler {
	return &BusinessHoursHandler{db: db, audit: audit, availability: availability}
}

type BusinessDayConfig struct {
	Weekday   *int   `json:"weekday" binding:"required,weekday"`
	Closed    bool   `json:"closed"`
	StartTime string `json:"start_time" binding:"omitempty,clock"`
	EndTime   string `json:"end_time" binding:"omitempty,clock"`
}

type BusinessHoursUpdateRequest struct {
	Days []BusinessDayConfig `json:"days" binding:"required,min=1,max=7,dive"`
}

func (h *BusinessHoursHandler) Get(c *gin.Context) {
	var hours []models.BusinessHours
	if err := h.db.
		Where("shop_id = ?", middleware.ShopID(c)).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_business_hours", "Erro ao buscar horários.")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// toRow validates one day. Closed days carry no times.
func (d BusinessDayConfig) toRow(shopID uuid.UUID) (models.BusinessHours, string) {
	row := models.BusinessHours{
		ShopID:  shopID,
		Weekday: *d.Weekday,
		Closed:  d.Closed,
	}
	if d.Closed {
		return row, ""
	}

	if d.StartTime == "" || d.EndTime == "" {
		return row, "missing_times"
	}
	start, _ := availability.ParseClock(d.StartTime)
	end, _ := availability.ParseClock(d.EndTime)
	if start >= end {
		return row, "invalid_interval"
	}

	startTime, endTime := d.StartTime, d.EndTime
	row.StartTime = &startTime
	row.EndTime = &endTime
	return row, ""
}

// Update upserts the given weekdays. Days not sent stay as they are.
func (h *BusinessHoursHandler) Update(c *gin.Context) {
	shopID := middleware.ShopID(c)

	var req BusinessHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code": "invalid_request",
			"message":    err.Error(),
		})
		return
	}

	seen := map[int]bool{}
	rows := make([]models.BusinessHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[*d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Dia da semana repetido.")
			return
		}
		seen[*d.Weekday] = true

		row, problem := d.toRow(shopID)
		switch problem {
		case "missing_times":
			httperr.BadRequest(c, problem, "Informe início e fim para dias abertos.")
			return
		case "invalid_interval":
			httperr.BadRequest(c, problem, "O início deve ser antes do fim.")
			return
		}
		rows = append(rows, row)
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "weekday"}},
		DoUpdates: clause.AssignmentColumns([]string{"closed", "start_time", "end_time", "updated_at"}),
	}).Create(&rows).Error; err != nil {
		httperr.Internal(c, "failed_to_save_business_hours", "Erro ao salvar horários.")
		return
	}

	h.availability.Invalidate(c.Request.Context(), shopID)
	writeAudit(c, h.audit, "business_hours_updated", "business_hours", nil, gin.H{"days": len(rows)})

	h.Get(c)
}
