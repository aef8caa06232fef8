package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository"
	"github.com/drbooking/booking-api/internal/repository/memory"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
	"github.com/drbooking/booking-api/pkg/metrics"
)

type fakeCache struct {
	mu    sync.Mutex
	calls int
}

func (c *fakeCache) Invalidate(doctorID uuid.UUID, date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *fakeCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestService(t *testing.T) (*Service, *memory.Store, *model.Doctor, *fakeCache) {
	t.Helper()

	store := memory.NewStore()
	doctor := &model.Doctor{ID: uuid.New(), FirstName: "Philippe", LastName: "Martin"}
	store.AddDoctor(doctor)

	cache := &fakeCache{}
	svc := NewService(store, store, memory.NewOutboxRepository(store), cache, Config{}, metrics.New("test"))
	return svc, store, doctor, cache
}

func validRequest(doctorID uuid.UUID) *model.BookingRequest {
	return &model.BookingRequest{
		DoctorID:         doctorID,
		StartTime:        time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC),
		PatientFirstName: "Alice",
		PatientLastName:  "Martin",
		PatientEmail:     "alice.martin@example.com",
		PatientPhone:     "+33 6 12 34 56 78",
		Reason:           "Annual checkup",
	}
}

func TestSubmitSuccess(t *testing.T) {
	svc, store, doctor, cache := newTestService(t)

	booking, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.Equal(t, model.BookingStatusScheduled, booking.Status)
	assert.Equal(t, booking.StartTime.Add(30*time.Minute), booking.EndTime)

	// Committed, visible and the slot is gone.
	stored, err := store.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, stored.ID)

	free, err := store.IsSlotFree(context.Background(), doctor.ID, booking.StartTime, booking.EndTime)
	require.NoError(t, err)
	assert.False(t, free)

	assert.Equal(t, 1, cache.invalidations())

	events, err := store.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventBookingCreated, events[0].EventType)
}

func TestSubmitCollectsAllValidationErrors(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := &model.BookingRequest{
		DoctorID:         uuid.Nil,
		PatientFirstName: "A",
		PatientLastName:  "",
		PatientEmail:     "not-an-email",
		PatientPhone:     "abc",
		Reason:           "hi",
	}

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)

	violated := make(map[string]string)
	for _, f := range appErr.Fields {
		violated[f.Field] = f.Message
	}

	for _, field := range []string{
		"doctor_id",
		"start_time",
		"patient_first_name",
		"patient_last_name",
		"patient_email",
		"patient_phone",
		"reason",
	} {
		assert.Contains(t, violated, field, "expected a violation for %s", field)
	}
}

func TestSubmitUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := validRequest(uuid.New())
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "doctor_id", appErr.Fields[0].Field)
}

func TestSubmitSlotConflict(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validRequest(doctor.ID))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotConflict))
}

func TestSubmitOverlappingSlotConflict(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	// Misaligned but overlapping the committed slot.
	req := validRequest(doctor.ID)
	req.StartTime = req.StartTime.Add(15 * time.Minute)

	_, err = svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotConflict))
}

func TestSubmitConcurrentExactlyOneWins(t *testing.T) {
	svc, store, doctor, _ := newTestService(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), validRequest(doctor.ID))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.Is(err, apperrors.ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)

	bookings, err := store.List(context.Background(), &model.BookingFilters{DoctorID: doctor.ID})
	require.NoError(t, err)
	assert.Len(t, bookings, 1, "exactly one record must exist")
}

func TestSubmitExpiredContext(t *testing.T) {
	svc, store, doctor, _ := newTestService(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Submit(ctx, validRequest(doctor.ID))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTimeout))

	bookings, err := store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, bookings, "no record may exist after a timeout before persist")
}

type hangingWriteRepo struct {
	repository.BookingRepository
}

func (r hangingWriteRepo) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return fmt.Errorf("commit interrupted: %w", context.DeadlineExceeded)
}

func TestSubmitIndeterminateWhenWriteInterrupted(t *testing.T) {
	store := memory.NewStore()
	doctor := &model.Doctor{ID: uuid.New(), FirstName: "Sophie", LastName: "Lefevre"}
	store.AddDoctor(doctor)

	svc := NewService(store, hangingWriteRepo{store}, nil, nil, Config{}, metrics.New("test"))

	_, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrIndeterminate))
}

func TestCancelBooking(t *testing.T) {
	svc, store, doctor, cache := newTestService(t)

	booking, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(context.Background(), booking.ID, "patient unavailable")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "patient unavailable", *cancelled.CancelReason)

	// The slot is bookable again.
	free, err := store.IsSlotFree(context.Background(), doctor.ID, booking.StartTime, booking.EndTime)
	require.NoError(t, err)
	assert.True(t, free)

	assert.Equal(t, 2, cache.invalidations())

	events, err := store.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventBookingCancelled, events[1].EventType)
}

func TestCancelBookingTwice(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)

	booking, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), booking.ID, "first")
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), booking.ID, "second")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestCancelCompletedBooking(t *testing.T) {
	svc, store, doctor, _ := newTestService(t)

	booking, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	booking.Status = model.BookingStatusCompleted
	require.NoError(t, store.Update(context.Background(), booking))

	_, err = svc.CancelBooking(context.Background(), booking.ID, "too late")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CancelBooking(context.Background(), uuid.New(), "whatever")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestGetBookingNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.GetBooking(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListBookingsFilters(t *testing.T) {
	svc, _, doctor, _ := newTestService(t)

	first, err := svc.Submit(context.Background(), validRequest(doctor.ID))
	require.NoError(t, err)

	second := validRequest(doctor.ID)
	second.StartTime = first.StartTime.Add(time.Hour)
	_, err = svc.Submit(context.Background(), second)
	require.NoError(t, err)

	_, err = svc.CancelBooking(context.Background(), first.ID, "moved")
	require.NoError(t, err)

	scheduled, err := svc.ListBookings(context.Background(), &model.BookingFilters{
		DoctorID: doctor.ID,
		Status:   model.BookingStatusScheduled,
	})
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.True(t, scheduled[0].StartTime.Equal(second.StartTime))
}
