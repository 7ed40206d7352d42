package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shop struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Slug     string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Timezone string    `gorm:"size:64;not null;default:'America/Sao_Paulo'" json:"timezone"`
	Phone    string    `gorm:"size:20" json:"phone"`
	Address  string    `gorm:"size:255" json:"address"`

	// Minimum lead time for self-service bookings.
	MinAdvanceMinutes int `gorm:"default:0" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// ShopMember links a staff user to a shop with a role.
type ShopMember struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shop_members_shop_user" json:"shop_id"`
	Shop   Shop      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"shop"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shop_members_shop_user" json:"user_id"`
	User   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Role   string    `gorm:"size:20;not null;default:'reception'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *ShopMember) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
