package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/httperr"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/models"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
)

type MemberHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewMemberHandler(db *gorm.DB, audit *audit.Dispatcher) *MemberHandler {
	return &MemberHandler{db: db, audit: audit}
}

type AddMemberRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=6"`
	Phone    string `json:"phone" binding:"max=20"`
	Role     string `json:"role" binding:"required,oneof=admin professional reception"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin professional reception"`
}

type memberView struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
}

func toMemberView(m models.ShopMember) memberView {
	return memberView{
		ID:     m.ID.String(),
		UserID: m.UserID.String(),
		Name:   m.User.Name,
		Email:  m.User.Email,
		Phone:  m.User.Phone,
		Role:   m.Role,
	}
}

func (h *MemberHandler) List(c *gin.Context) {
	var members []models.ShopMember
	if err := h.db.
		Preload("User").
		Where("shop_id = ?", middleware.ShopID(c)).
		Order("created_at ASC").
		Find(&members).Error; err != nil {

		httperr.Internal(c, "failed_to_list_members", "Erro ao listar equipe.")
		return
	}

	out := make([]memberView, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberView(m))
	}
	c.JSON(http.StatusOK, out)
}

// Add links an existing user by e-mail, or creates one when a password is
// given.
func (h *MemberHandler) Add(c *gin.Context) {
	shopID := middleware.ShopID(c)

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var member models.ShopMember
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if req.Password == "" {
				return httperr.ErrValidation("password_required", "Senha obrigatória para novo usuário.")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user = models.User{
				Name:         req.Name,
				Email:        email,
				PasswordHash: string(hashed),
				Phone:        req.Phone,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		var count int64
		if err := tx.Model(&models.ShopMember{}).
			Where("shop_id = ? AND user_id = ?", shopID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return httperr.ErrConflict("member_already_exists")
		}

		member = models.ShopMember{ShopID: shopID, UserID: user.ID, Role: req.Role}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		member.User = user
		return nil
	})
	if err != nil {
		if httperr.IsConflict(err) {
			httperr.Conflict(c, "member_already_exists", "Usuário já faz parte da equipe.")
			return
		}
		httperr.Respond(c, err)
		return
	}

	writeAudit(c, h.audit, "member_added", "shop_member", &member.ID, gin.H{"role": member.Role})
	c.JSON(http.StatusCreated, toMemberView(member))
}

func (h *MemberHandler) find(c *gin.Context) (*models.ShopMember, bool) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}

	var member models.ShopMember
	if err := h.db.Preload("User").
		Where("id = ? AND shop_id = ?", id, middleware.ShopID(c)).
		First(&member).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "member_not_found", "Membro não encontrado.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_member", "Erro ao buscar membro.")
		return nil, false
	}
	return &member, true
}

// lastAdmin reports whether member is the shop's only admin.
func (h *MemberHandler) lastAdmin(member *models.ShopMember) (bool, error) {
	if member.Role != string(permissions.RoleAdmin) {
		return false, nil
	}
	var admins int64
	err := h.db.Model(&models.ShopMember{}).
		Where("shop_id = ? AND role = ?", member.ShopID, permissions.RoleAdmin).
		Count(&admins).Error
	return admins <= 1, err
}

func (h *MemberHandler) UpdateRole(c *gin.Context) {
	member, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	if req.Role != member.Role {
		last, err := h.lastAdmin(member)
		if err != nil {
			httperr.Internal(c, "failed_to_check_admins", "Erro ao validar equipe.")
			return
		}
		if last {
			httperr.BadRequest(c, "last_admin", "A barbearia precisa de pelo menos um administrador.")
			return
		}
	}

	from := member.Role
	member.Role = req.Role
	if err := h.db.Model(member).Update("role", req.Role).Error; err != nil {
		httperr.Internal(c, "failed_to_update_member", "Erro ao salvar membro.")
		return
	}

	writeAudit(c, h.audit, "member_role_changed", "shop_member", &member.ID, gin.H{"from": from, "to": req.Role})
	c.JSON(http.StatusOK, toMemberView(*member))
}

func (h *MemberHandler) Remove(c *gin.Context) {
	member, ok := h.find(c)
	if !ok {
		return
	}

	last, err := h.lastAdmin(member)
	if err != nil {
		httperr.Internal(c, "failed_to_check_admins", "Erro ao validar equipe.")
		return
	}
	if last {
		httperr.BadRequest(c, "last_admin", "A barbearia precisa de pelo menos um administrador.")
		return
	}

	if err := h.db.Delete(member).Error; err != nil {
		httperr.Internal(c, "failed_to_remove_member", "Erro ao remover membro.")
		return
	}

	writeAudit(c, h.audit, "member_removed", "shop_member", &member.ID, nil)
	c.Status(http.StatusNoContent)
}
