package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

func TestBookingRecord_RoundTrip(t *testing.T) {
	down := int64(5000)
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	b := &domain.Booking{
		UserID: "u1",
		Vehicle: domain.Vehicle{
			ID: 4, Name: "VW Polo GTI (2019)", Gearbox: domain.GearboxManual,
			Rates: domain.RateTable{Day: domain.RateTier{PriceCents: 8000, IncludedKm: 200}},
		},
		Renter:               domain.Renter{FirstName: "Jane", LastName: "Doe"},
		StartDate:            "2024-06-01",
		EndDate:              "2024-06-11",
		DurationDays:         10,
		TotalPriceCents:      71000,
		Delivery:             domain.Delivery{Enabled: true, Address: "Nice", FeeCents: 3000},
		Documents:            domain.BookingDocuments{Identity: "https://i"},
		Status:               domain.BookingStatusPending,
		PaymentOption:        domain.PaymentOptionDownPayment,
		DownPaymentCents:     &down,
		PaymentTransactionID: "pi_1",
		PaymentCustomerID:    "cus_1",
	}

	rec := toBookingRecord(b)
	assert.Equal(t, "pi_1", rec.StripePaymentIntentID)
	assert.Equal(t, "manual", rec.Car.Gearbox)

	rec.CreatedAt = created
	got := rec.toDomain("b-1")
	assert.Equal(t, "b-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	b.ID = "b-1"
	b.CreatedAt = created
	assert.Equal(t, *b, got)
}

func TestProfileUpdates(t *testing.T) {
	phone := "+336"
	customer := "cus_1"
	updates := profileUpdates(domain.ProfileUpdate{Phone: &phone, PaymentCustomerID: &customer})

	assert.Len(t, updates, 2)
	assert.Equal(t, "phone", updates[0].Path)
	assert.Equal(t, "stripeCustomerId", updates[1].Path)
	assert.Empty(t, profileUpdates(domain.ProfileUpdate{}))
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, checkStatus("b1", "pending", domain.BookingStatusPending))
	assert.ErrorIs(t, checkStatus("b1", "confirmed", domain.BookingStatusPending), repository.ErrStatusChanged)
	assert.ErrorIs(t, checkStatus("b1", nil, domain.BookingStatusPending), repository.ErrStatusChanged)
}
