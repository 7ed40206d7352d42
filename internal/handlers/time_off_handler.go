package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

type TimeOffHandler struct {
	db           *gorm.DB
	audit        *audit.Dispatcher
	availability *appointment.AvailabilityCache
}

func NewTimeOffHandler(
	db *gorm.DB,
	audit *audit.Dispatcher,
	availability *appointment.AvailabilityCache,
) *TimeOffHandler {
	return &TimeOffHandler{db: db, audit: audit, availability: availability}
}

// CreateTimeOffRequest takes either absolute instants (start_at/end_at) or
// a local date with start_time/end_time, or a whole local day (all_day).
type CreateTimeOffRequest struct {
	ProfessionalID *uuid.UUID `json:"professional_id"`

	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`

	Date      string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"omitempty,clock"`
	EndTime   string `json:"end_time" binding:"omitempty,clock"`
	AllDay    bool   `json:"all_day"`

	Reason string `json:"reason" binding:"max=255"`
}

func (h *TimeOffHandler) shop(c *gin.Context) (*models.Shop, bool) {
	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", middleware.ShopID(c)).Error; err != nil {
		httperr.NotFound(c, "shop_not_found", "Barbearia não encontrada.")
		return nil, false
	}
	return &shop, true
}

// ======================================================
// LIST
// ======================================================

func (h *TimeOffHandler) List(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	profID, ok := optionalUUIDQuery(c, "professional_id")
	if !ok {
		return
	}

	q := h.db.Where("shop_id = ?", shop.ID)

	if profID != nil {
		q = q.Where("(professional_id IS NULL OR professional_id = ?)", *profID)
	}

	if from := c.Query("from"); from != "" {
		start, _, err := dayInShop(shop, from)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Data inicial inválida.")
			return
		}
		q = q.Where("end_at > ?", start)
	}
	if to := c.Query("to"); to != "" {
		_, end, err := dayInShop(shop, to)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Data final inválida.")
			return
		}
		q = q.Where("start_at < ?", end)
	}

	var rows []models.TimeOff
	if err := q.Preload("Professional").Order("start_at ASC").Find(&rows).Error; err != nil {
		httperr.Internal(c, "failed_to_list_time_off", "Erro ao listar bloqueios.")
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ======================================================
// CREATE
// ======================================================

func (h *TimeOffHandler) interval(shop *models.Shop, req CreateTimeOffRequest) (time.Time, time.Time, error) {
	switch {
	case req.StartAt != nil && req.EndAt != nil:
		return *req.StartAt, *req.EndAt, nil
	case req.Date != "" && req.AllDay:
		return dayInShop(shop, req.Date)
	case req.Date != "" && req.StartTime != "" && req.EndTime != "":
		start, err := parseDateTimeInShop(shop, req.Date, req.StartTime)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := parseDateTimeInShop(shop, req.Date, req.EndTime)
		return start, end, err
	}
	return time.Time{}, time.Time{}, errors.New("missing interval")
}

func (h *TimeOffHandler) Create(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var req CreateTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	start, end, err := h.interval(shop, req)
	if err != nil {
		httperr.BadRequest(c, "invalid_interval", "Informe o período do bloqueio.")
		return
	}
	if !end.After(start) {
		httperr.BadRequest(c, "invalid_interval", "O fim deve ser depois do início.")
		return
	}

	if req.ProfessionalID != nil {
		var count int64
		if err := h.db.Model(&models.Professional{}).
			Where("id = ? AND shop_id = ?", *req.ProfessionalID, shop.ID).
			Count(&count).Error; err != nil {
			httperr.Internal(c, "failed_to_check_professional", "Erro ao validar profissional.")
			return
		}
		if count == 0 {
			httperr.BadRequest(c, "professional_not_found", "Profissional não encontrado.")
			return
		}
	}

	row := models.TimeOff{
		ShopID:         shop.ID,
		ProfessionalID: req.ProfessionalID,
		StartAt:        start.UTC(),
		EndAt:          end.UTC(),
		Reason:         req.Reason,
	}

	if err := h.db.Create(&row).Error; err != nil {
		httperr.Internal(c, "failed_to_create_time_off", "Erro ao criar bloqueio.")
		return
	}

	h.availability.Invalidate(c.Request.Context(), shop.ID)
	writeAudit(c, h.audit, "time_off_created", "time_off", &row.ID, gin.H{
		"professional_id": row.ProfessionalID,
		"start_at":        row.StartAt,
		"end_at":          row.EndAt,
	})

	c.JSON(http.StatusCreated, row)
}

// ======================================================
// DELETE
// ======================================================

func (h *TimeOffHandler) Delete(c *gin.Context) {
	shopID := middleware.ShopID(c)

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	res := h.db.Where("id = ? AND shop_id = ?", id, shopID).Delete(&models.TimeOff{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_time_off", "Erro ao remover bloqueio.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "time_off_not_found", "Bloqueio não encontrado.")
		return
	}

	h.availability.Invalidate(c.Request.Context(), shopID)
	writeAudit(c, h.audit, "time_off_deleted", "time_off", &id, nil)

	c.Status(http.StatusNoContent)
}
