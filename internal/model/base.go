package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all stored records
type Base struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
