package models

import "github.com/google/uuid"

// ensureID fills a zero primary key before insert.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
