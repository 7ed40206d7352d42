package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/config"
	domain "github.com/BruksfildServices01/barber-agenda/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
	"github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the self-booking flow addressed by shop slug.
type PublicHandler struct {
	db     *gorm.DB
	repo   domain.Repository
	config *config.Config

	availability *appointment.GetAvailability
	create       *appointment.CreateAppointment
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	cfg *config.Config,
	availability *appointment.GetAvailability,
	create *appointment.CreateAppointment,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		repo:         repo,
		config:       cfg,
		availability: availability,
		create:       create,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required,max=100"`
	ClientPhone string `json:"client_phone" binding:"required,max=20"`
	ClientEmail string `json:"client_email" binding:"omitempty,email"`

	ProfessionalID uuid.UUID   `json:"professional_id" binding:"required"`
	ServiceIDs     []uuid.UUID `json:"service_ids" binding:"required,min=1"`

	Date  string `json:"date" binding:"required,datetime=2006-01-02"` // YYYY-MM-DD
	Time  string `json:"time" binding:"required,clock"`               // HH:mm
	Notes string `json:"notes" binding:"max=500"`
}

type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"required,max=20"`
}

////////////////////////////////////////////////////////
// SHOP
////////////////////////////////////////////////////////

func (h *PublicHandler) shop(c *gin.Context) (*models.Shop, bool) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))

	shop, err := h.repo.GetShopBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			httperr.NotFound(c, "shop_not_found", "Barbearia não encontrada.")
			return nil, false
		}
		httperr.Respond(c, err)
		return nil, false
	}
	return shop, true
}

func (h *PublicHandler) GetShop(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var hours []models.BusinessHours
	if err := h.db.Where("shop_id = ?", shop.ID).Order("weekday ASC").Find(&hours).Error; err != nil {
		httperr.Internal(c, "failed_to_get_business_hours", "Erro ao buscar horários.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop":           shopJSON(shop),
		"business_hours": hours,
	})
}

////////////////////////////////////////////////////////
// CATALOG
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.Where("shop_id = ? AND active = ?", shop.ID, true)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop":     shopJSON(shop),
		"services": services,
	})
}

func (h *PublicHandler) ListProfessionals(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var pros []models.Professional
	if err := h.db.
		Where("shop_id = ? AND active = ?", shop.ID, true).
		Order("name ASC").
		Find(&pros).Error; err != nil {
		httperr.Internal(c, "failed_to_list_professionals", "Erro ao listar profissionais.")
		return
	}

	out := make([]gin.H, 0, len(pros))
	for _, p := range pros {
		out = append(out, gin.H{"id": p.ID, "name": p.Name})
	}
	c.JSON(http.StatusOK, out)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	in, ok := availabilityQuery(c)
	if !ok {
		return
	}
	in.ShopID = shop.ID

	slots, err := h.availability.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     in.Date,
		"timezone": shop.Timezone,
		"slots":    slots,
	})
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	res, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		ShopID:           shop.ID,
		Channel:          appointment.ChannelPublic,
		ClientName:       req.ClientName,
		ClientPhone:      req.ClientPhone,
		ClientEmail:      req.ClientEmail,
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

// respondBookingError adds self-service wording for the business rejections.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "too_soon"):
		httperr.BadRequest(c, "too_soon", "Horário muito próximo. Escolha outro horário.")
	case httperr.IsBusiness(err, "outside_working_hours"):
		httperr.BadRequest(c, "outside_working_hours", "Fora do horário de atendimento.")
	case httperr.IsBusiness(err, "professional_unavailable"):
		httperr.BadRequest(c, "professional_unavailable", "Profissional indisponível neste horário.")
	default:
		httperr.Respond(c, err)
	}
}

////////////////////////////////////////////////////////
// CLIENT ACCOUNT
////////////////////////////////////////////////////////

// RegisterClient creates a login for a client of the shop, linking the
// existing client record with the same phone when there is one.
func (h *PublicHandler) RegisterClient(c *gin.Context) {
	shop, ok := h.shop(c)
	if !ok {
		return
	}

	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Erro ao processar a senha.")
		return
	}

	var (
		user   models.User
		client models.Client
	)
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.ErrConflict("email_already_registered")
		}

		user = models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hashed),
			Phone:        phone,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		err := tx.Where("shop_id = ? AND phone = ?", shop.ID, phone).First(&client).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			client = models.Client{
				ShopID: shop.ID,
				UserID: &user.ID,
				Name:   user.Name,
				Phone:  phone,
				Email:  email,
			}
			return tx.Create(&client).Error
		case err != nil:
			return err
		}

		if client.UserID != nil {
			return httperr.ErrConflict("client_already_registered")
		}
		client.UserID = &user.ID
		if client.Email == "" {
			client.Email = email
		}
		return tx.Save(&client).Error
	})
	if err != nil {
		switch {
		case httperr.IsConflict(err):
			_, code := httperr.Status(err)
			httperr.Conflict(c, code, "Cadastro já existente.")
		case httperr.IsUniqueViolation(err, models.ClientPhoneIndex):
			httperr.Conflict(c, "client_already_registered", "Cadastro já existente.")
		default:
			httperr.Internal(c, "failed_to_register_client", "Erro ao criar cadastro.")
		}
		return
	}

	token, err := middleware.SignToken(h.config.JWTSecret, middleware.Claims{
		UserID:   user.ID,
		ShopID:   shop.ID,
		Role:     permissions.RoleClient,
		ClientID: &client.ID,
	})
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Erro ao gerar o token.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   userJSON(&user),
		"client": client,
		"shop":   shopJSON(shop),
		"token":  token,
	})
}

