package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

type ShopHandler struct {
	db           *gorm.DB
	availability *appointment.AvailabilityCache
}

func NewShopHandler(db *gorm.DB, availability *appointment.AvailabilityCache) *ShopHandler {
	return &ShopHandler{db: db, availability: availability}
}

type UpdateShopRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	Address           *string `json:"address" binding:"omitempty,max=255"`
	Timezone          *string `json:"timezone" binding:"omitempty,timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes" binding:"omitempty,min=0"`
}

func (h *ShopHandler) loadShop(c *gin.Context) (*models.Shop, bool) {
	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", middleware.ShopID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "shop_not_found", "Barbearia não encontrada.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_shop", "Erro ao buscar dados da barbearia.")
		return nil, false
	}
	return &shop, true
}

func (h *ShopHandler) Get(c *gin.Context) {
	shop, ok := h.loadShop(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) Update(c *gin.Context) {
	shop, ok := h.loadShop(c)
	if !ok {
		return
	}

	var req UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		shop.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.Timezone != nil {
		shop.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_shop", "Erro ao salvar as configurações da barbearia.")
		return
	}

	// timezone moves every local day window
	h.availability.Invalidate(c.Request.Context(), shop.ID)

	c.JSON(http.StatusOK, shop)
}
