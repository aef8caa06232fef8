package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
	"github.com/drbooking/booking-api/pkg/metrics"
)

// Config carries the daily slot template. Every knob has a default matching
// the reference behavior: six start hours, 30-minute slots, 5-minute cache.
type Config struct {
	SlotDuration  time.Duration
	DayStartHours []int
	CacheTTL      time.Duration
}

type Service struct {
	refData  repository.ReferenceDataRepository
	bookings repository.BookingRepository
	cache    *cache.Cache
	cfg      Config
	metrics  *metrics.Metrics
}

func NewService(refData repository.ReferenceDataRepository, bookings repository.BookingRepository, cfg Config, m *metrics.Metrics) *Service {
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = 30 * time.Minute
	}
	if len(cfg.DayStartHours) == 0 {
		cfg.DayStartHours = []int{9, 10, 11, 14, 15, 16}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Service{
		refData:  refData,
		bookings: bookings,
		cache:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cfg:      cfg,
		metrics:  m,
	}
}

// GetSlots returns the day's bookable slots for a doctor, ascending by
// start time. Availability comes from the booking store, never from chance:
// a slot overlapping a committed booking is reported unavailable.
func (s *Service) GetSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.Slot, error) {
	s.metrics.AvailabilityQueries.Inc()

	if _, err := s.refData.GetDoctor(ctx, doctorID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.Storage(err)
	}

	// Time-of-day on the query date is ignored.
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	key := cacheKey(doctorID, day)

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.AvailabilityCacheHits.Inc()
		slots := cached.([]model.Slot)
		out := make([]model.Slot, len(slots))
		copy(out, slots)
		return out, nil
	}

	slots, err := s.generateSlots(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, slots, cache.DefaultExpiration)

	out := make([]model.Slot, len(slots))
	copy(out, slots)
	return out, nil
}

func (s *Service) generateSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]model.Slot, error) {
	var slots []model.Slot
	for _, hour := range s.cfg.DayStartHours {
		hourStart := day.Add(time.Duration(hour) * time.Hour)
		hourEnd := hourStart.Add(time.Hour)
		for start := hourStart; start.Before(hourEnd); start = start.Add(s.cfg.SlotDuration) {
			end := start.Add(s.cfg.SlotDuration)

			free, err := s.bookings.IsSlotFree(ctx, doctorID, start, end)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return nil, apperrors.Timeout("availability query", err)
				}
				if errors.Is(err, context.Canceled) {
					return nil, err
				}
				return nil, apperrors.Storage(err)
			}

			slots = append(slots, model.Slot{
				ID:          uuid.New(),
				DoctorID:    doctorID,
				StartTime:   start,
				EndTime:     end,
				IsAvailable: free,
			})
		}
	}
	return slots, nil
}

// Invalidate drops the cached slot set for a doctor/day. Called after a
// successful booking so the next query reflects it.
func (s *Service) Invalidate(doctorID uuid.UUID, date time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	s.cache.Delete(cacheKey(doctorID, day))
}

func cacheKey(doctorID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s|%s", doctorID, day.Format("2006-01-02"))
}
