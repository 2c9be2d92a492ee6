package service

import (
	"context"
	"fmt"

	"staynest/background-worker-service/internal/app/background-worker/config"
	"staynest/background-worker-service/internal/app/background-worker/entity"
	"staynest/pkg/logger"

	"github.com/wneessen/go-mail"
)

// SMTPMailSender отправляет письма через SMTP
type SMTPMailSender struct {
	client *mail.Client
	from   string
}

// NewSMTPMailSender создает почтовый клиент по конфигурации SMTP
func NewSMTPMailSender(cfg config.SMTPConfig) (*SMTPMailSender, error) {
	client, err := mail.NewClient(
		cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &SMTPMailSender{
		client: client,
		from:   cfg.From,
	}, nil
}

// SendBookingConfirmation отправляет гостю письмо-подтверждение брони
func (s *SMTPMailSender) SendBookingConfirmation(ctx context.Context, event *entity.BookingEvent) error {
	if event.GuestEmail == "" {
		return fmt.Errorf("booking %s has no guest email", event.BookingID)
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.To(event.GuestEmail); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}

	msg.Subject("Your StayNest booking request")
	msg.SetBodyString(mail.TypeTextPlain, bookingConfirmationBody(event))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send booking confirmation: %w", err)
	}

	return nil
}

func bookingConfirmationBody(event *entity.BookingEvent) string {
	return fmt.Sprintf(
		"Hello,\n\n"+
			"We received your booking request %s.\n\n"+
			"Check-in:  %s\n"+
			"Check-out: %s\n"+
			"Total:     %.2f\n\n"+
			"The host has been notified and will confirm your stay shortly.\n\n"+
			"StayNest",
		event.BookingID,
		event.CheckIn.Format("2006-01-02"),
		event.CheckOut.Format("2006-01-02"),
		event.TotalPrice,
	)
}

// noopMailSender используется, когда SMTP не сконфигурирован:
// письма не уходят, обработка событий продолжается.
type noopMailSender struct{}

// NewNoopMailSender создает заглушку почтового клиента
func NewNoopMailSender() MailSender {
	return &noopMailSender{}
}

func (s *noopMailSender) SendBookingConfirmation(_ context.Context, event *entity.BookingEvent) error {
	logger.Warn().
		Str("booking_id", event.BookingID).
		Msg("SMTP is not configured, skipping booking confirmation email")
	return nil
}
