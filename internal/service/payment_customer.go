package service

import (
	"context"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type customerLinkingIntents struct {
	intents     checkout.IntentProvider
	profileRepo repository.ProfileRepository
}

// NewCustomerLinkingIntents saves the payment customer on the payer's profile
// as soon as the provider creates one, so later intents for the same user
// reuse it instead of creating another customer.
func NewCustomerLinkingIntents(intents checkout.IntentProvider, profileRepo repository.ProfileRepository) checkout.IntentProvider {
	return &customerLinkingIntents{intents: intents, profileRepo: profileRepo}
}

func (c *customerLinkingIntents) CreateIntent(ctx context.Context, amountCents int64, currency string, payer domain.Profile) (domain.PaymentIntent, error) {
	intent, err := c.intents.CreateIntent(ctx, amountCents, currency, payer)
	if err != nil {
		return intent, err
	}
	if payer.PaymentCustomerID == "" && intent.CustomerID != "" {
		customerID := intent.CustomerID
		if err := c.profileRepo.Update(ctx, payer.UID, domain.ProfileUpdate{PaymentCustomerID: &customerID}); err != nil {
			// the intent is still usable; submission retries the link
			logger.Warn("Failed to save payment customer on profile", "userID", payer.UID, "customerID", customerID, "error", err)
		}
	}
	return intent, nil
}
