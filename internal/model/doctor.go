package model

import "github.com/google/uuid"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Doctor is read-only reference data from the booking core's perspective.
type Doctor struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	SpecialtyID uuid.UUID `db:"specialty_id" json:"specialty_id"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	Location    string    `db:"location" json:"location,omitempty"`
	Gender      Gender    `db:"gender" json:"gender,omitempty"`
	Rating      float64   `db:"rating" json:"rating,omitempty"`
	ReviewCount int       `db:"review_count" json:"review_count,omitempty"`
}

type DoctorFilters struct {
	SpecialtyID uuid.UUID
}
