package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeOff blocks [StartAt, EndAt). A nil ProfessionalID blocks the whole shop.
type TimeOff struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"shop_id"`
	ProfessionalID *uuid.UUID    `gorm:"type:uuid;index" json:"professional_id"`
	Professional   *Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"professional,omitempty"`

	StartAt time.Time `gorm:"not null;index" json:"start_at"`
	EndAt   time.Time `gorm:"not null;index" json:"end_at"`
	Reason  string    `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *TimeOff) TableName() string {
	return "time_off"
}

func (t *TimeOff) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
