package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/httpresp"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

type ClientHandler struct {
	db      *gorm.DB
	history *appointment.ListClientAppointments
}

func NewClientHandler(db *gorm.DB, history *appointment.ListClientAppointments) *ClientHandler {
	return &ClientHandler{db: db, history: history}
}

type ClientRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Phone string `json:"phone" binding:"required,max=20"`
	Email string `json:"email" binding:"omitempty,email,max=100"`
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	shopID := middleware.ShopID(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Model(&models.Client{}).Where("shop_id = ?", shopID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)",
			like, like, like,
		)
	}

	page, limit, offset := httpresp.Paging(c, 50, 200)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_clients", "Erro ao listar clientes.")
		return
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&clients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_clients", "Erro ao listar clientes.")
		return
	}

	httpresp.Paged(c, clients, page, limit, total)
}

// ======================================================
// CREATE / UPDATE
// ======================================================

func (h *ClientHandler) Create(c *gin.Context) {
	shopID := middleware.ShopID(c)

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	phone := strings.TrimSpace(req.Phone)

	var count int64
	if err := h.db.Model(&models.Client{}).
		Where("shop_id = ? AND phone = ?", shopID, phone).
		Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_check_client", "Erro ao validar cliente.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "client_already_exists", "Já existe um cliente com este telefone.")
		return
	}

	client := models.Client{
		ShopID: shopID,
		Name:   strings.TrimSpace(req.Name),
		Phone:  phone,
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
	}

	if err := h.db.Create(&client).Error; err != nil {
		if httperr.IsUniqueViolation(err, models.ClientPhoneIndex) {
			httperr.Conflict(c, "client_already_exists", "Já existe um cliente com este telefone.")
			return
		}
		httperr.Internal(c, "failed_to_create_client", "Erro ao criar cliente.")
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) find(c *gin.Context) (*models.Client, bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}

	var client models.Client
	if err := h.db.
		Where("id = ? AND shop_id = ?", id, middleware.ShopID(c)).
		First(&client).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_client", "Erro ao buscar cliente.")
		return nil, false
	}
	return &client, true
}

func (h *ClientHandler) Update(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Phone = strings.TrimSpace(req.Phone)
	client.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.db.Save(client).Error; err != nil {
		if httperr.IsUniqueViolation(err, models.ClientPhoneIndex) {
			httperr.Conflict(c, "client_already_exists", "Já existe um cliente com este telefone.")
			return
		}
		httperr.Internal(c, "failed_to_update_client", "Erro ao salvar cliente.")
		return
	}

	c.JSON(http.StatusOK, client)
}

// ======================================================
// HISTORY
// ======================================================

func (h *ClientHandler) History(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	list, err := h.history.Execute(c.Request.Context(), client.ShopID, client.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client":       client,
		"appointments": list,
	})
}
