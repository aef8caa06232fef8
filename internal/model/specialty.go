package model

import "github.com/google/uuid"

// Specialty is immutable reference data seeded at startup.
type Specialty struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
}
