package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/config"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
	"github.com/BruksfildServices01/barber-agenda/internal/timezone"
	"github.com/BruksfildServices01/barber-agenda/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config

	emailDomainOK func(ctx context.Context, email string) bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		db:            db,
		config:        cfg,
		emailDomainOK: validators.NewEmailDomain(nil, 3*time.Second).Valid,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	ShopName     string `json:"shop_name" binding:"required"`
	ShopSlug     string `json:"shop_slug" binding:"required"`
	ShopPhone    string `json:"shop_phone"`
	ShopAddress  string `json:"shop_address"`
	ShopTimezone string `json:"shop_timezone" binding:"omitempty,timezone"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`

	// Also attends clients, so gets a professional agenda.
	IsProfessional bool `json:"is_professional"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`

	// Picks the shop when the user belongs to several.
	ShopSlug string `json:"shop_slug"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code": "invalid_request",
			"message":    err.Error(),
		})
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.ShopSlug))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !h.emailDomainOK(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "O domínio do e-mail informado não parece ser válido.")
		return
	}

	var count int64
	if err := h.db.Model(&models.Shop{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_check_slug", "Erro ao validar o slug.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "slug_already_exists", "Este endereço já está em uso.")
		return
	}

	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_check_email", "Erro ao validar o e-mail.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "email_already_registered", "E-mail já cadastrado.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Erro ao processar a senha.")
		return
	}

	tz := req.ShopTimezone
	if tz == "" {
		tz = timezone.Default()
	}

	shop := models.Shop{
		Name:     req.ShopName,
		Slug:     slug,
		Timezone: tz,
		Phone:    req.ShopPhone,
		Address:  req.ShopAddress,
	}
	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		member := models.ShopMember{
			ShopID: shop.ID,
			UserID: user.ID,
			Role:   string(permissions.RoleAdmin),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		if req.IsProfessional {
			prof := models.Professional{
				ShopID: shop.ID,
				UserID: &user.ID,
				Name:   user.Name,
				Phone:  user.Phone,
				Active: true,
			}
			return tx.Create(&prof).Error
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_register", "Erro ao criar a conta.")
		return
	}

	token, err := middleware.SignToken(h.config.JWTSecret, middleware.Claims{
		UserID: user.ID,
		ShopID: shop.ID,
		Role:   permissions.RoleAdmin,
	})
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Erro ao gerar o token.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  userJSON(&user),
		"shop":  shopJSON(&shop),
		"role":  permissions.RoleAdmin,
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_code": "invalid_request",
			"message":    err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
			return
		}
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
		return
	}

	claims, shop, err := h.resolveAccess(&user, strings.ToLower(strings.TrimSpace(req.ShopSlug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Forbidden(c, "no_shop_access", "Usuário sem acesso a esta barbearia.")
			return
		}
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	token, err := middleware.SignToken(h.config.JWTSecret, claims)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Erro ao gerar o token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userJSON(&user),
		"shop":  shopJSON(shop),
		"role":  claims.Role,
		"token": token,
	})
}

// resolveAccess prefers a staff membership over a client record.
func (h *AuthHandler) resolveAccess(user *models.User, slug string) (middleware.Claims, *models.Shop, error) {
	var shopID *uuid.UUID
	if slug != "" {
		var shop models.Shop
		if err := h.db.Where("slug = ?", slug).First(&shop).Error; err != nil {
			return middleware.Claims{}, nil, err
		}
		shopID = &shop.ID
	}

	mq := h.db.Preload("Shop").Where("user_id = ?", user.ID)
	if shopID != nil {
		mq = mq.Where("shop_id = ?", *shopID)
	}

	var member models.ShopMember
	err := mq.Order("created_at ASC").First(&member).Error
	if err == nil {
		role, _ := permissions.ParseRole(member.Role)
		return middleware.Claims{
			UserID: user.ID,
			ShopID: member.ShopID,
			Role:   role,
		}, &member.Shop, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.Claims{}, nil, err
	}

	cq := h.db.Where("user_id = ?", user.ID)
	if shopID != nil {
		cq = cq.Where("shop_id = ?", *shopID)
	}

	var client models.Client
	if err := cq.Order("created_at ASC").First(&client).Error; err != nil {
		return middleware.Claims{}, nil, err
	}

	var shop models.Shop
	if err := h.db.First(&shop, "id = ?", client.ShopID).Error; err != nil {
		return middleware.Claims{}, nil, err
	}

	return middleware.Claims{
		UserID:   user.ID,
		ShopID:   client.ShopID,
		Role:     permissions.RoleClient,
		ClientID: &client.ID,
	}, &shop, nil
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
	}
}

func shopJSON(s *models.Shop) gin.H {
	return gin.H{
		"id":       s.ID,
		"name":     s.Name,
		"slug":     s.Slug,
		"timezone": s.Timezone,
		"phone":    s.Phone,
		"address":  s.Address,
	}
}
