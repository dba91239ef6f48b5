package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

const serviceName = "stripe"

var ErrInvalidClientSecret = errors.New("invalid payment client secret")

type customerAPI interface {
	New(params *stripe.CustomerParams) (*stripe.Customer, error)
}

type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Confirm(id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
}

// Error wraps a Stripe failure. UserMessage exposes the provider's message,
// e.g. a card decline reason.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stripe %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) UserMessage() string {
	var se *stripe.Error
	if errors.As(e.Err, &se) && se.Type == stripe.ErrorTypeCard {
		return se.Msg
	}
	return ""
}

// StripeGateway creates and confirms Stripe payment intents. It holds the
// secret key, so it only runs server-side.
type StripeGateway struct {
	customers customerAPI
	intents   intentAPI
	returnURL string
}

func NewStripeGateway(secretKey, returnURL string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{customers: sc.Customers, intents: sc.PaymentIntents, returnURL: returnURL}
}

// CreateIntent reuses the payer's Stripe customer when known, otherwise
// creates one tagged with the user id, then opens an intent for amountCents.
func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, payer domain.Profile) (domain.PaymentIntent, error) {
	if amountCents <= 0 {
		return domain.PaymentIntent{}, fmt.Errorf("invalid payment amount %d", amountCents)
	}

	customerID := payer.PaymentCustomerID
	if customerID == "" {
		params := &stripe.CustomerParams{
			Name:  stripe.String(strings.TrimSpace(payer.FirstName + " " + payer.LastName)),
			Email: stripe.String(payer.Email),
			Phone: stripe.String(payer.Phone),
		}
		params.Context = ctx
		params.AddMetadata("firebaseUID", payer.UID)

		logger.ExternalServiceCall(serviceName, "CreateCustomer", "userID", payer.UID)
		cust, err := g.customers.New(params)
		logger.ExternalServiceResult(serviceName, "CreateCustomer", err, "userID", payer.UID)
		if err != nil {
			return domain.PaymentIntent{}, &Error{Op: "create customer", Err: err}
		}
		customerID = cust.ID
	}

	params := &stripe.PaymentIntentParams{
		Amount:           stripe.Int64(amountCents),
		Currency:         stripe.String(strings.ToLower(currency)),
		Customer:         stripe.String(customerID),
		SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOnSession)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("firebaseUID", payer.UID)

	logger.ExternalServiceCall(serviceName, "CreatePaymentIntent", "customerID", customerID, "amount", amountCents)
	pi, err := g.intents.New(params)
	logger.ExternalServiceResult(serviceName, "CreatePaymentIntent", err, "customerID", customerID)
	if err != nil {
		return domain.PaymentIntent{}, &Error{Op: "create payment intent", Err: err}
	}

	return domain.PaymentIntent{
		ClientSecret:  pi.ClientSecret,
		TransactionID: pi.ID,
		CustomerID:    customerID,
		AmountCents:   pi.Amount,
		Currency:      string(pi.Currency),
	}, nil
}

// Confirm confirms the intent in place. Flows that would need a redirect
// fail instead of leaving the intent waiting for customer action.
func (g *StripeGateway) Confirm(ctx context.Context, clientSecret, paymentMethod string) (domain.PaymentResult, error) {
	id, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return domain.PaymentResult{}, err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod:         stripe.String(paymentMethod),
		ErrorOnRequiresAction: stripe.Bool(true),
	}
	if g.returnURL != "" {
		params.ReturnURL = stripe.String(g.returnURL)
	}
	params.Context = ctx

	logger.ExternalServiceCall(serviceName, "ConfirmPaymentIntent", "intentID", id)
	pi, err := g.intents.Confirm(id, params)
	logger.ExternalServiceResult(serviceName, "ConfirmPaymentIntent", err, "intentID", id)
	if err != nil {
		return domain.PaymentResult{}, &Error{Op: "confirm payment intent", Err: err}
	}

	return domain.PaymentResult{
		Succeeded:     pi.Status == stripe.PaymentIntentStatusSucceeded,
		Status:        string(pi.Status),
		TransactionID: pi.ID,
	}, nil
}

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret_")
	if idx <= 0 {
		return "", ErrInvalidClientSecret
	}
	return clientSecret[:idx], nil
}
