package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

type ProfessionalHandler struct {
	db           *gorm.DB
	availability *appointment.AvailabilityCache
}

func NewProfessionalHandler(db *gorm.DB, availability *appointment.AvailabilityCache) *ProfessionalHandler {
	return &ProfessionalHandler{db: db, availability: availability}
}

type CreateProfessionalRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Phone string `json:"phone" binding:"max=20"`

	// Links the agenda to a staff member of the same shop.
	UserID *uuid.UUID `json:"user_id"`
}

type UpdateProfessionalRequest struct {
	Name   *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Phone  *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Active *bool   `json:"active,omitempty"`
}

func (h *ProfessionalHandler) List(c *gin.Context) {
	q := h.db.Where("shop_id = ?", middleware.ShopID(c))

	switch c.Query("active") {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	var pros []models.Professional
	if err := q.Order("name ASC").Find(&pros).Error; err != nil {
		httperr.Internal(c, "failed_to_list_professionals", "Erro ao listar profissionais.")
		return
	}

	c.JSON(http.StatusOK, pros)
}

func (h *ProfessionalHandler) Create(c *gin.Context) {
	shopID := middleware.ShopID(c)

	var req CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	if req.UserID != nil {
		var count int64
		if err := h.db.Model(&models.ShopMember{}).
			Where("shop_id = ? AND user_id = ?", shopID, *req.UserID).
			Count(&count).Error; err != nil {
			httperr.Internal(c, "failed_to_check_member", "Erro ao validar usuário.")
			return
		}
		if count == 0 {
			httperr.BadRequest(c, "member_not_found", "Usuário não pertence a esta barbearia.")
			return
		}
	}

	prof := models.Professional{
		ShopID: shopID,
		UserID: req.UserID,
		Name:   strings.TrimSpace(req.Name),
		Phone:  req.Phone,
		Active: true,
	}

	if err := h.db.Create(&prof).Error; err != nil {
		httperr.Internal(c, "failed_to_create_professional", "Erro ao criar profissional.")
		return
	}

	c.JSON(http.StatusCreated, prof)
}

func (h *ProfessionalHandler) Update(c *gin.Context) {
	shopID := middleware.ShopID(c)

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var prof models.Professional
	if err := h.db.Where("id = ? AND shop_id = ?", id, shopID).First(&prof).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "professional_not_found", "Profissional não encontrado.")
			return
		}
		httperr.Internal(c, "failed_to_get_professional", "Erro ao buscar profissional.")
		return
	}

	var req UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	if req.Name != nil {
		prof.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		prof.Phone = *req.Phone
	}
	if req.Active != nil {
		prof.Active = *req.Active
	}

	if err := h.db.Save(&prof).Error; err != nil {
		httperr.Internal(c, "failed_to_update_professional", "Erro ao salvar profissional.")
		return
	}

	if req.Active != nil {
		h.availability.Invalidate(c.Request.Context(), shopID)
	}

	c.JSON(http.StatusOK, prof)
}
