package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
)

// customerCountingGateway creates a customer whenever the payer has none.
type customerCountingGateway struct {
	created int
	err     error
}

func (g *customerCountingGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, payer domain.Profile) (domain.PaymentIntent, error) {
	if g.err != nil {
		return domain.PaymentIntent{}, g.err
	}
	customerID := payer.PaymentCustomerID
	if customerID == "" {
		g.created++
		customerID = "cus_1"
	}
	return domain.PaymentIntent{ClientSecret: "pi_secret_x", CustomerID: customerID, AmountCents: amountCents}, nil
}

func TestCustomerLinkingIntents(t *testing.T) {
	ctx := context.Background()

	t.Run("Second intent reuses the saved customer", func(t *testing.T) {
		gateway := &customerCountingGateway{}
		profiles := new(MockProfileRepo)
		profile := domain.Profile{UID: "u1", Email: "jane@example.com"}
		profiles.On("Update", ctx, "u1", mock.MatchedBy(func(upd domain.ProfileUpdate) bool {
			return upd.PaymentCustomerID != nil && *upd.PaymentCustomerID == "cus_1"
		})).Run(func(args mock.Arguments) {
			profile.PaymentCustomerID = *args.Get(2).(domain.ProfileUpdate).PaymentCustomerID
		}).Return(nil).Once()

		intents := NewCustomerLinkingIntents(gateway, profiles)

		first, err := intents.CreateIntent(ctx, 71000, "eur", profile)
		require.NoError(t, err)
		assert.Equal(t, "cus_1", first.CustomerID)
		assert.Equal(t, "cus_1", profile.PaymentCustomerID)

		// the next request resolves the profile again, now carrying the customer
		second, err := intents.CreateIntent(ctx, 5000, "eur", profile)
		require.NoError(t, err)
		assert.Equal(t, "cus_1", second.CustomerID)

		assert.Equal(t, 1, gateway.created)
		profiles.AssertExpectations(t)
	})

	t.Run("Profile update failure keeps the intent", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		profiles.On("Update", ctx, "u1", mock.Anything).Return(errors.New("db down"))

		intent, err := NewCustomerLinkingIntents(&customerCountingGateway{}, profiles).CreateIntent(ctx, 71000, "eur", domain.Profile{UID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, "pi_secret_x", intent.ClientSecret)
	})

	t.Run("Provider failure saves nothing", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		_, err := NewCustomerLinkingIntents(&customerCountingGateway{err: errors.New("stripe down")}, profiles).CreateIntent(ctx, 71000, "eur", domain.Profile{UID: "u1"})
		assert.Error(t, err)
		profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}
