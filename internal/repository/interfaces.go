package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// ReferenceDataRepository serves the doctor/specialty catalog. The
	// booking core only ever reads from it.
	ReferenceDataRepository interface {
		ListSpecialties(ctx context.Context) ([]*model.Specialty, error)
		ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	}

	// BookingRepository owns committed bookings. CreateBooking must perform
	// an atomic check-and-insert per (doctor, start time): the losing side
	// of a race gets a SlotConflict and no row is written.
	BookingRepository interface {
		IsSlotFree(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error)
		CreateBooking(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		Update(ctx context.Context, booking *model.Booking) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	}
)
