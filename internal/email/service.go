package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/model"
)

type Service interface {
	Send(ctx context.Context, to, subject, body string) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPService delivers plain-text mail through an SMTP relay.
type SMTPService struct {
	dialer dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) *SMTPService {
	return &SMTPService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPService) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// ReminderMessage renders the subject and body of an appointment reminder.
func ReminderMessage(patientName string, appt model.Appointment) (string, string) {
	subject := fmt.Sprintf("Reminder: %s on %s", appt.Title, appt.AppointmentDate)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", patientName)
	fmt.Fprintf(&b, "This is a reminder of your appointment \"%s\" on %s (%s).\n",
		appt.Title, appt.AppointmentDate, appt.AppointmentDate.Weekday())
	if appt.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", appt.Description)
	}
	if appt.Cost > 0 {
		fmt.Fprintf(&b, "\nEstimated cost: $%.2f\n", appt.Cost)
	}
	b.WriteString("\nIf you need to reschedule, please contact the clinic.\n")
	return subject, b.String()
}
