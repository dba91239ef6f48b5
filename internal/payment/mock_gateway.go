package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// DeclinedPaymentMethod is refused by MockGateway, for exercising the failure path locally.
const DeclinedPaymentMethod = "pm_card_chargeDeclined"

type declinedError struct{}

func (declinedError) Error() string       { return "mock gateway: card declined" }
func (declinedError) UserMessage() string { return "Your card was declined." }

// MockGateway approves every payment except DeclinedPaymentMethod. Used for
// local development without Stripe credentials.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	logger.Warn("Using mock payment gateway; no real charges are made")
	return &MockGateway{}
}

func (g *MockGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, payer domain.Profile) (domain.PaymentIntent, error) {
	if amountCents <= 0 {
		return domain.PaymentIntent{}, fmt.Errorf("invalid payment amount %d", amountCents)
	}
	customerID := payer.PaymentCustomerID
	if customerID == "" {
		customerID = "cus_mock_" + shortID()
	}
	id := "pi_mock_" + shortID()
	return domain.PaymentIntent{
		ClientSecret:  id + "_secret_" + shortID(),
		TransactionID: id,
		CustomerID:    customerID,
		AmountCents:   amountCents,
		Currency:      strings.ToLower(currency),
	}, nil
}

func (g *MockGateway) Confirm(ctx context.Context, clientSecret, paymentMethod string) (domain.PaymentResult, error) {
	id, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return domain.PaymentResult{}, err
	}
	if paymentMethod == DeclinedPaymentMethod {
		return domain.PaymentResult{}, declinedError{}
	}
	return domain.PaymentResult{Succeeded: true, Status: "succeeded", TransactionID: id}, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
