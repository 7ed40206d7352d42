package dto

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentListDTO struct {
	ID               uuid.UUID `json:"id"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	Status           string    `json:"status"`
	ClientID         uuid.UUID `json:"client_id"`
	ClientName       string    `json:"client_name"`
	ProfessionalID   uuid.UUID `json:"professional_id"`
	ProfessionalName string    `json:"professional_name"`
	Services         []string  `json:"services"`
	Notes            string    `json:"notes"`
}
