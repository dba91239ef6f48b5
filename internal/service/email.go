package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridEmailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName string) *SendGridEmailService {
	return &SendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridEmailService) SendBookingReceived(ctx context.Context, b *domain.Booking) error {
	subject := fmt.Sprintf("Votre réservation %s est en cours de validation", b.Vehicle.Name)
	var body strings.Builder
	fmt.Fprintf(&body, "Bonjour %s,\n\n", b.Renter.FirstName)
	fmt.Fprintf(&body, "Nous avons bien reçu votre demande de location pour la %s du %s au %s.\n", b.Vehicle.Name, b.StartDate, b.EndDate)
	fmt.Fprintf(&body, "Montant total : %s\n", FormatEuros(b.TotalPriceCents))
	if b.DownPaymentCents != nil {
		fmt.Fprintf(&body, "Acompte réglé : %s\n", FormatEuros(*b.DownPaymentCents))
	}
	body.WriteString("\nNotre équipe vérifie vos documents et reviendra vers vous rapidement.\n")
	return s.send(ctx, b.Renter.Email, b.Renter.FullName(), subject, body.String())
}

func (s *SendGridEmailService) SendNewBookingAlert(ctx context.Context, to []string, b *domain.Booking) error {
	subject := fmt.Sprintf("Nouvelle réservation : %s (%s)", b.Vehicle.Name, b.Renter.FullName())
	body := fmt.Sprintf("Réservation %s\nClient : %s <%s>, %s\nVéhicule : %s\nDu %s au %s (%d jours)\nTotal : %s\n",
		b.ID, b.Renter.FullName(), b.Renter.Email, b.Renter.Phone,
		b.Vehicle.Name, b.StartDate, b.EndDate, b.DurationDays, FormatEuros(b.TotalPriceCents))
	for _, addr := range to {
		if err := s.send(ctx, addr, "", subject, body); err != nil {
			return err
		}
	}
	return nil
}

func (s *SendGridEmailService) SendStatusChanged(ctx context.Context, b *domain.Booking) error {
	subject := fmt.Sprintf("Mise à jour de votre réservation %s", b.Vehicle.Name)
	body := fmt.Sprintf("Bonjour %s,\n\nLe statut de votre réservation du %s au %s est maintenant : %s.\n",
		b.Renter.FirstName, b.StartDate, b.EndDate, statusLabel(b.Status))
	return s.send(ctx, b.Renter.Email, b.Renter.FullName(), subject, body)
}

func (s *SendGridEmailService) SendPendingDigest(ctx context.Context, to []string, pending int) error {
	subject := fmt.Sprintf("%d réservation(s) en attente de validation", pending)
	body := fmt.Sprintf("%d réservation(s) attendent une décision dans l'espace administrateur.\n", pending)
	for _, addr := range to {
		if err := s.send(ctx, addr, "", subject, body); err != nil {
			return err
		}
	}
	return nil
}

func (s *SendGridEmailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", to)
	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail(toName, to), plainText, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogEmailService only logs outgoing mail. Used when no API key is set.
type LogEmailService struct{}

func (LogEmailService) SendBookingReceived(ctx context.Context, b *domain.Booking) error {
	logger.Info("Email skipped: booking received", "bookingID", b.ID, "to", b.Renter.Email)
	return nil
}

func (LogEmailService) SendNewBookingAlert(ctx context.Context, to []string, b *domain.Booking) error {
	logger.Info("Email skipped: new booking alert", "bookingID", b.ID, "to", to)
	return nil
}

func (LogEmailService) SendStatusChanged(ctx context.Context, b *domain.Booking) error {
	logger.Info("Email skipped: status changed", "bookingID", b.ID, "status", b.Status)
	return nil
}

func (LogEmailService) SendPendingDigest(ctx context.Context, to []string, pending int) error {
	logger.Info("Email skipped: pending digest", "pending", pending, "to", to)
	return nil
}

func statusLabel(s domain.BookingStatus) string {
	switch s {
	case domain.BookingStatusPending:
		return "en attente"
	case domain.BookingStatusConfirmed:
		return "confirmée"
	case domain.BookingStatusRejected:
		return "refusée"
	case domain.BookingStatusCompleted:
		return "terminée"
	}
	return string(s)
}

// FormatEuros renders cents as "1 234,50 €".
func FormatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(r)
	}
	out := fmt.Sprintf("%s,%02d €", grouped.String(), cents%100)
	if neg {
		return "-" + out
	}
	return out
}
