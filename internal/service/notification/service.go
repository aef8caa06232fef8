package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drbooking/booking-api/internal/email"
	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/pkg/logger"
)

// Service turns booking events into patient emails. It sits on the consuming
// side of the outbox: the API records events, the worker delivers them here.
type Service struct {
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// HandleEvent dispatches a single booking event payload by type.
func (s *Service) HandleEvent(ctx context.Context, eventType string, payload []byte) error {
	var booking model.Booking
	if err := json.Unmarshal(payload, &booking); err != nil {
		return fmt.Errorf("failed to decode booking payload: %w", err)
	}

	switch eventType {
	case model.EventBookingCreated:
		return s.emailSvc.SendBookingConfirmation(ctx, &booking)
	case model.EventBookingCancelled:
		return s.emailSvc.SendBookingCancellation(ctx, &booking)
	default:
		s.logger.ZL.Warn().Str("event_type", eventType).Msg("Ignoring unknown event type")
		return nil
	}
}
