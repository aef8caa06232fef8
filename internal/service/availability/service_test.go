package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository/memory"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
	"github.com/drbooking/booking-api/pkg/metrics"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *model.Doctor) {
	t.Helper()

	store := memory.NewStore()
	doctor := &model.Doctor{ID: uuid.New(), FirstName: "Jean", LastName: "Dupont"}
	store.AddDoctor(doctor)

	svc := NewService(store, store, Config{}, metrics.New("test"))
	return svc, store, doctor
}

func TestGetSlotsDailyTemplate(t *testing.T) {
	svc, _, doctor := newTestService(t)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	slots, err := svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	require.Len(t, slots, 12)

	wantStarts := []string{
		"09:00", "09:30",
		"10:00", "10:30",
		"11:00", "11:30",
		"14:00", "14:30",
		"15:00", "15:30",
		"16:00", "16:30",
	}

	for i, slot := range slots {
		assert.Equal(t, wantStarts[i], slot.StartTime.Format("15:04"))
		assert.Equal(t, 30*time.Minute, slot.EndTime.Sub(slot.StartTime))
		assert.Equal(t, doctor.ID, slot.DoctorID)
		assert.True(t, slot.IsAvailable)
		if i > 0 {
			assert.True(t, slots[i-1].StartTime.Before(slot.StartTime), "slots must ascend")
		}
	}
}

func TestGetSlotsIgnoresTimeOfDay(t *testing.T) {
	svc, _, doctor := newTestService(t)

	morning := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 10, 23, 45, 0, 0, time.UTC)

	a, err := svc.GetSlots(context.Background(), doctor.ID, morning)
	require.NoError(t, err)
	b, err := svc.GetSlots(context.Background(), doctor.ID, evening)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].StartTime.Equal(b[i].StartTime))
	}
}

func TestGetSlotsUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetSlots(context.Background(), uuid.New(), time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestGetSlotsReflectsBookings(t *testing.T) {
	svc, store, doctor := newTestService(t)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateBooking(context.Background(), &model.Booking{
		DoctorID:  doctor.ID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.BookingStatusScheduled,
	}))

	slots, err := svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)

	for _, slot := range slots {
		if slot.StartTime.Equal(start) {
			assert.False(t, slot.IsAvailable, "booked slot must be unavailable")
		} else {
			assert.True(t, slot.IsAvailable, "slot %s should be free", slot.StartTime.Format("15:04"))
		}
	}
}

func TestGetSlotsCachesUntilInvalidated(t *testing.T) {
	svc, store, doctor := newTestService(t)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	slots, err := svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.True(t, slots[0].IsAvailable)

	require.NoError(t, store.CreateBooking(context.Background(), &model.Booking{
		DoctorID:  doctor.ID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.BookingStatusScheduled,
	}))

	// Cached answer is stale until someone invalidates it.
	slots, err = svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.True(t, slots[0].IsAvailable)

	svc.Invalidate(doctor.ID, start)

	slots, err = svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.False(t, slots[0].IsAvailable)
}

func TestGetSlotsCachedCopyIsIsolated(t *testing.T) {
	svc, _, doctor := newTestService(t)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	first[0].IsAvailable = false

	second, err := svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.True(t, second[0].IsAvailable, "callers must not share cached slices")
}

func TestGetSlotsCancelledBookingFreesSlot(t *testing.T) {
	svc, store, doctor := newTestService(t)
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	booking := &model.Booking{
		DoctorID:  doctor.ID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    model.BookingStatusScheduled,
	}
	require.NoError(t, store.CreateBooking(context.Background(), booking))

	booking.Status = model.BookingStatusCancelled
	require.NoError(t, store.Update(context.Background(), booking))

	slots, err := svc.GetSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	for _, slot := range slots {
		assert.True(t, slot.IsAvailable)
	}
}

func TestGetSlotsExpiredContext(t *testing.T) {
	svc, _, doctor := newTestService(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.GetSlots(ctx, doctor.ID, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTimeout))
}
