package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientPhoneIndex keeps one client per phone within a shop. It is a
// partial unique index (phone <> '') created by db.Migrate.
const ClientPhoneIndex = "idx_clients_shop_phone"

// Cliente da barbearia; UserID só existe quando ele mesmo se cadastrou.
type Client struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uuid.UUID  `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;index" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
