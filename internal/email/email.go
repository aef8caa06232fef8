package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/drbooking/booking-api/internal/model"
)

type Service interface {
	SendBookingConfirmation(ctx context.Context, booking *model.Booking) error
	SendBookingCancellation(ctx context.Context, booking *model.Booking) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, booking *model.Booking) error {
	subject := "Your appointment is confirmed"
	body := fmt.Sprintf(
		"Hello %s %s,\n\nYour appointment on %s is confirmed.\nReason: %s\n\nSee you soon.",
		booking.PatientFirstName,
		booking.PatientLastName,
		booking.StartTime.Format("Monday, 2 January 2006 at 15:04"),
		booking.Reason,
	)
	return s.SendCustom(ctx, booking.PatientEmail, subject, body)
}

func (s *smtpService) SendBookingCancellation(ctx context.Context, booking *model.Booking) error {
	subject := "Your appointment has been cancelled"
	body := fmt.Sprintf(
		"Hello %s %s,\n\nYour appointment on %s has been cancelled.",
		booking.PatientFirstName,
		booking.PatientLastName,
		booking.StartTime.Format("Monday, 2 January 2006 at 15:04"),
	)
	return s.SendCustom(ctx, booking.PatientEmail, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
