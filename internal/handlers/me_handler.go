package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := middleware.UserID(c)
	shopID := middleware.ShopID(c)
	role := middleware.Role(c)

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Usuário não encontrado.")
		return
	}

	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", shopID).Error; err != nil {
		httperr.NotFound(c, "shop_not_found", "Barbearia não encontrada.")
		return
	}

	resp := gin.H{
		"user": userJSON(&user),
		"shop": shopJSON(&shop),
		"role": role,
	}

	if clientID, ok := middleware.ClientID(c); ok {
		resp["client_id"] = clientID
	}

	if role == permissions.RoleProfessional || role == permissions.RoleAdmin {
		var prof models.Professional
		err := h.db.Where("shop_id = ? AND user_id = ?", shopID, userID).First(&prof).Error
		if err == nil {
			resp["professional_id"] = prof.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}
