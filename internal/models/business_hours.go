package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessHours holds one weekday of a shop's weekly schedule.
// StartTime and EndTime are local wall-clock "HH:MM" and are nil when Closed.
type BusinessHours struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_business_hours_shop_weekday" json:"shop_id"`

	Weekday   int     `gorm:"not null;uniqueIndex:idx_business_hours_shop_weekday;check:weekday BETWEEN 0 AND 6" json:"weekday"`
	Closed    bool    `gorm:"not null;default:false" json:"closed"`
	StartTime *string `gorm:"size:8" json:"start_time"`
	EndTime   *string `gorm:"size:8" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BusinessHours) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
