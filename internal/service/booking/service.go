package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
	"github.com/drbooking/booking-api/pkg/metrics"
)

// SlotCache is the availability cache invalidated after a commit.
type SlotCache interface {
	Invalidate(doctorID uuid.UUID, date time.Time)
}

type Config struct {
	SlotDuration time.Duration
}

// Service coordinates booking submissions. Each submission moves
// Draft -> Validated -> Committed, or ends Rejected (validation) or
// Failed (persist). The storage collaborator owns slot serialization;
// the coordinator holds no lock.
type Service struct {
	refData  repository.ReferenceDataRepository
	repo     repository.BookingRepository
	outbox   repository.OutboxRepository
	cache    SlotCache
	validate *validator.Validate
	cfg      Config
	metrics  *metrics.Metrics
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 .\-()]{7,19}$`)

func NewService(
	refData repository.ReferenceDataRepository,
	repo repository.BookingRepository,
	outbox repository.OutboxRepository,
	cache SlotCache,
	cfg Config,
	m *metrics.Metrics,
) *Service {
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = 30 * time.Minute
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register phone validation: %v", err))
	}

	return &Service{
		refData:  refData,
		repo:     repo,
		outbox:   outbox,
		cache:    cache,
		validate: v,
		cfg:      cfg,
		metrics:  m,
	}
}

// Submit validates the request, re-checks the slot and commits the booking.
// Exactly one record is created on success, zero on any failure path.
func (s *Service) Submit(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	fields, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		s.metrics.ValidationErrors.Inc()
		return nil, apperrors.Validation(fields)
	}

	endTime := req.StartTime.Add(s.cfg.SlotDuration)

	// Close the race between the availability query and this submission.
	// The storage layer re-asserts this atomically on insert.
	free, err := s.repo.IsSlotFree(ctx, req.DoctorID, req.StartTime, endTime)
	if err != nil {
		return nil, s.mapReadErr("slot check", err)
	}
	if !free {
		s.metrics.SlotConflicts.Inc()
		return nil, apperrors.SlotConflict(nil)
	}

	// If the caller has already gone away the persist is not started: no
	// record exists and the outcome is certain.
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Timeout("booking submit", err)
	}

	booking := &model.Booking{
		DoctorID:         req.DoctorID,
		StartTime:        req.StartTime,
		EndTime:          endTime,
		PatientFirstName: req.PatientFirstName,
		PatientLastName:  req.PatientLastName,
		PatientEmail:     req.PatientEmail,
		PatientPhone:     req.PatientPhone,
		Reason:           req.Reason,
		Notes:            req.Notes,
		Status:           model.BookingStatusScheduled,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		if apperrors.Is(err, apperrors.ErrSlotConflict) {
			s.metrics.SlotConflicts.Inc()
			return nil, err
		}
		// The write was in flight when the context ended: the commit may
		// or may not have landed. Never retried automatically.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperrors.Indeterminate("booking submit", err)
		}
		return nil, apperrors.Storage(err)
	}

	s.metrics.BookingsCreated.Inc()

	if s.cache != nil {
		s.cache.Invalidate(booking.DoctorID, booking.StartTime)
	}
	s.recordEvent(ctx, model.EventBookingCreated, booking)

	return booking, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, s.mapReadErr("booking lookup", err)
	}
	return booking, nil
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	bookings, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, s.mapReadErr("booking list", err)
	}
	return bookings, nil
}

// CancelBooking releases the slot. Cancelled and completed bookings stay
// as they are.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, reason string) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.BadRequest("booking is already cancelled", nil)
	}
	if booking.Status == model.BookingStatusCompleted {
		return nil, apperrors.BadRequest("cannot cancel a completed booking", nil)
	}

	booking.Status = model.BookingStatusCancelled
	booking.CancelReason = &reason

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}

	s.metrics.BookingsCancelled.Inc()

	if s.cache != nil {
		s.cache.Invalidate(booking.DoctorID, booking.StartTime)
	}
	s.recordEvent(ctx, model.EventBookingCancelled, booking)

	return booking, nil
}

// validateRequest collects every violated field so a caller can surface all
// problems at once rather than fixing them one resubmission at a time.
func (s *Service) validateRequest(ctx context.Context, req *model.BookingRequest) ([]apperrors.FieldError, error) {
	var fields []apperrors.FieldError

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, apperrors.Internal(err)
		}
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
	}

	if req.DoctorID != uuid.Nil {
		if _, err := s.refData.GetDoctor(ctx, req.DoctorID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				fields = append(fields, apperrors.FieldError{
					Field:   "doctor_id",
					Message: "doctor does not exist",
				})
			} else {
				return nil, s.mapReadErr("doctor lookup", err)
			}
		}
	}

	return fields, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func (s *Service) mapReadErr(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(operation, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.Storage(err)
}

// recordEvent queues a booking event for the outbox worker. A queue failure
// never fails the booking itself.
func (s *Service) recordEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(booking)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal booking event")
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID.String()).Msg("failed to record booking event")
	}
}
