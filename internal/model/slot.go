package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a fixed-duration bookable interval for one doctor on one day.
// Slots are generated per availability query and never persisted.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}
