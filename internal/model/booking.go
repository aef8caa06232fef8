package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is a committed reservation of a slot by a patient.
type Booking struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	DoctorID         uuid.UUID     `db:"doctor_id" json:"doctor_id"`
	StartTime        time.Time     `db:"start_time" json:"start_time"`
	EndTime          time.Time     `db:"end_time" json:"end_time"`
	PatientFirstName string        `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName  string        `db:"patient_last_name" json:"patient_last_name"`
	PatientEmail     string        `db:"patient_email" json:"patient_email"`
	PatientPhone     string        `db:"patient_phone" json:"patient_phone"`
	Reason           string        `db:"reason" json:"reason"`
	Notes            string        `db:"notes" json:"notes,omitempty"`
	Status           BookingStatus `db:"status" json:"status"`
	CancelReason     *string       `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingRequest is the transient submission input. End time is derived
// from the configured slot duration, never supplied by the caller.
type BookingRequest struct {
	DoctorID         uuid.UUID `json:"doctor_id" validate:"required"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	PatientFirstName string    `json:"patient_first_name" validate:"required,min=2"`
	PatientLastName  string    `json:"patient_last_name" validate:"required,min=2"`
	PatientEmail     string    `json:"patient_email" validate:"required,email"`
	PatientPhone     string    `json:"patient_phone" validate:"required,phone"`
	Reason           string    `json:"reason" validate:"required,min=5"`
	Notes            string    `json:"notes" validate:"max=1000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type BookingFilters struct {
	DoctorID  uuid.UUID
	Status    BookingStatus
	StartDate time.Time
	EndDate   time.Time
}
