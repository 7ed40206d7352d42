package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Professional struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uuid.UUID  `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Phone  string `gorm:"size:20" json:"phone"`
	Active bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Professional) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
