package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
)

func contractDraft() checkout.Draft {
	return checkout.Draft{
		Vehicle: domain.Vehicle{
			Name:    "CLIO RS Line (2021)",
			Brand:   "Renault",
			Gearbox: domain.GearboxAutomatic,
			Fuel:    "Essence",
			Rates: domain.RateTable{
				Day:   domain.RateTier{PriceCents: 8000, IncludedKm: 200},
				Week:  domain.RateTier{PriceCents: 47000, IncludedKm: 1400},
				Month: domain.RateTier{PriceCents: 165000, IncludedKm: 4200},
			},
			ExtraKmPriceCents: 25,
			DepositCents:      80000,
		},
		StartDate:     "2025-01-01",
		EndDate:       "2025-01-11",
		PaymentOption: domain.PaymentOptionFull,
	}
}

func TestRenderContract(t *testing.T) {
	policy := checkout.Policy{DeliveryFeeCents: 3000, DownPaymentCents: 5000, Currency: "eur"}
	renter := domain.Renter{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "+336", Address: "1 rue de Paris"}

	text, err := RenderContract("Location Auto", renter, contractDraft(), policy)
	require.NoError(t, err)
	assert.Contains(t, text, "Locataire : Jane Doe")
	assert.Contains(t, text, "du 2025-01-01 au 2025-01-11 (10 jour(s))")
	assert.Contains(t, text, "Kilométrage inclus : 2000 km")
	assert.Contains(t, text, "Prix total : 710,00 €")
	assert.Contains(t, text, "Dépôt de garantie : 800,00 €")
	assert.Contains(t, text, "retrait en agence")
	assert.NotContains(t, text, "Acompte")

	d := contractDraft()
	d.Delivery = true
	d.DeliveryAddress = "2 avenue de Lyon"
	d.PaymentOption = domain.PaymentOptionDownPayment
	text, err = RenderContract("Location Auto", renter, d, policy)
	require.NoError(t, err)
	assert.Contains(t, text, "Livraison : 2 avenue de Lyon (30,00 €)")
	assert.Contains(t, text, "Prix total : 740,00 €")
	assert.Contains(t, text, "Acompte payé à la réservation : 50,00 €")
}
