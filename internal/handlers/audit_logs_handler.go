package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/httpresp"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	shopID := middleware.ShopID(c)

	action := c.Query("action")
	entity := c.Query("entity")
	fromStr := c.Query("from")
	toStr := c.Query("to")

	page, limit, offset := httpresp.Paging(c, 50, 200)

	// --------------------------------------------------
	// Query base (sempre protegido por barbearia)
	// --------------------------------------------------

	q := h.db.
		Model(&models.AuditLog{}).
		Where("shop_id = ?", shopID)

	// --------------------------------------------------
	// Filtros opcionais
	// --------------------------------------------------

	if action != "" {
		q = q.Where("action = ?", action)
	}

	if entity != "" {
		q = q.Where("entity = ?", entity)
	}

	if fromStr != "" || toStr != "" {
		var shop models.Shop
		if err := h.db.Select("timezone").First(&shop, "id = ?", shopID).Error; err != nil {
			httperr.Internal(c, "shop_not_found", "Barbearia não encontrada.")
			return
		}

		if fromStr != "" {
			from, err := timezone.ParseDate(shop.Timezone, fromStr)
			if err != nil {
				httperr.BadRequest(c, "invalid_from", "Data inicial inválida.")
				return
			}
			q = q.Where("created_at >= ?", from)
		}

		if toStr != "" {
			to, err := timezone.ParseDate(shop.Timezone, toStr)
			if err != nil {
				httperr.BadRequest(c, "invalid_to", "Data final inválida.")
				return
			}
			_, end := timezone.DayBounds(to)
			q = q.Where("created_at < ?", end)
		}
	}

	// --------------------------------------------------
	// Total
	// --------------------------------------------------

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Erro ao contar logs.")
		return
	}

	// --------------------------------------------------
	// Listagem
	// --------------------------------------------------

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	httpresp.Paged(c, logs, page, limit, total)
}
