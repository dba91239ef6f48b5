package checkout

import (
	"context"

	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/domain"
)

type MockIntentProvider struct {
	mock.Mock
}

func (m *MockIntentProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, payer domain.Profile) (domain.PaymentIntent, error) {
	args := m.Called(ctx, amountCents, currency, payer)
	return args.Get(0).(domain.PaymentIntent), args.Error(1)
}

type MockPaymentConfirmer struct {
	mock.Mock
}

func (m *MockPaymentConfirmer) Confirm(ctx context.Context, clientSecret, paymentMethod string) (domain.PaymentResult, error) {
	args := m.Called(ctx, clientSecret, paymentMethod)
	return args.Get(0).(domain.PaymentResult), args.Error(1)
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, sub Submission) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

type staticCatalog map[int32]domain.Vehicle

func (c staticCatalog) Vehicle(id int32) (domain.Vehicle, bool) {
	v, ok := c[id]
	return v, ok
}

// providerError mimics a card decline carrying a message for the user.
type providerError struct {
	msg string
}

func (e *providerError) Error() string       { return "provider: " + e.msg }
func (e *providerError) UserMessage() string { return e.msg }

var testPolicy = Policy{DeliveryFeeCents: 3000, DownPaymentCents: 5000, Currency: "eur"}

func testVehicle() domain.Vehicle {
	return domain.Vehicle{
		ID:   1,
		Name: "CLIO RS Line (2021)",
		Rates: domain.RateTable{
			Day:   domain.RateTier{PriceCents: 8000, IncludedKm: 200},
			Week:  domain.RateTier{PriceCents: 47000, IncludedKm: 1400},
			Month: domain.RateTier{PriceCents: 165000, IncludedKm: 4200},
		},
		DepositCents: 80000,
	}
}

func testPayer() domain.Profile {
	return domain.Profile{
		UID:       "user-1",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "+33600000000",
		Address:   "1 rue de Paris",
	}
}

func pdf(name string) Document {
	return Document{FileName: name, ContentType: "application/pdf", Data: []byte("%PDF-1.4")}
}

func allDocuments() DocumentSet {
	set := DocumentSet{}
	for _, t := range domain.RequiredDocuments {
		set[t] = pdf(string(t) + ".pdf")
	}
	return set
}
