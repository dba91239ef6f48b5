package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
)

type fakeSender struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func newTestEmailService(sender *fakeSender) *SendGridEmailService {
	return &SendGridEmailService{client: sender, fromEmail: "noreply@example.com", fromName: "Location"}
}

func mailBooking() *domain.Booking {
	down := int64(5000)
	return &domain.Booking{
		ID:               "bk-1",
		Vehicle:          domain.Vehicle{Name: "CLIO RS Line (2021)"},
		Renter:           domain.Renter{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
		StartDate:        "2025-01-01",
		EndDate:          "2025-01-11",
		DurationDays:     10,
		TotalPriceCents:  71000,
		DownPaymentCents: &down,
		Status:           domain.BookingStatusConfirmed,
	}
}

func TestFormatEuros(t *testing.T) {
	assert.Equal(t, "0,00 €", FormatEuros(0))
	assert.Equal(t, "80,00 €", FormatEuros(8000))
	assert.Equal(t, "710,00 €", FormatEuros(71000))
	assert.Equal(t, "1 650,00 €", FormatEuros(165000))
	assert.Equal(t, "0,25 €", FormatEuros(25))
	assert.Equal(t, "-12,50 €", FormatEuros(-1250))
}

func TestSendGridEmailService_SendBookingReceived(t *testing.T) {
	sender := &fakeSender{status: 202}
	svc := newTestEmailService(sender)

	require.NoError(t, svc.SendBookingReceived(context.Background(), mailBooking()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "noreply@example.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	assert.Equal(t, "jane@example.com", msg.Personalizations[0].To[0].Address)
	assert.Contains(t, msg.Content[0].Value, "710,00 €")
	assert.Contains(t, msg.Content[0].Value, "Acompte réglé : 50,00 €")
}

func TestSendGridEmailService_AdminRecipients(t *testing.T) {
	sender := &fakeSender{status: 202}
	svc := newTestEmailService(sender)

	require.NoError(t, svc.SendNewBookingAlert(context.Background(), []string{"a@example.com", "b@example.com"}, mailBooking()))
	assert.Len(t, sender.sent, 2)

	require.NoError(t, svc.SendPendingDigest(context.Background(), []string{"a@example.com"}, 3))
	assert.Contains(t, sender.sent[2].Subject, "3 réservation(s)")
}

func TestSendGridEmailService_StatusChanged(t *testing.T) {
	sender := &fakeSender{status: 202}
	svc := newTestEmailService(sender)

	require.NoError(t, svc.SendStatusChanged(context.Background(), mailBooking()))
	assert.Contains(t, sender.sent[0].Content[0].Value, "confirmée")
}

func TestSendGridEmailService_Failures(t *testing.T) {
	svc := newTestEmailService(&fakeSender{status: 401})
	err := svc.SendStatusChanged(context.Background(), mailBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	svc = newTestEmailService(&fakeSender{err: errors.New("dial tcp: timeout")})
	assert.Error(t, svc.SendBookingReceived(context.Background(), mailBooking()))
}
