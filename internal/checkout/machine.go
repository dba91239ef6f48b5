package checkout

import (
	"context"
	"errors"
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
)

type Step int

const (
	StepDatesAndOptions Step = 1
	StepDocuments       Step = 2
	StepPayment         Step = 3
	StepConfirmation    Step = 4
)

func (s Step) String() string {
	switch s {
	case StepDatesAndOptions:
		return "dates_and_options"
	case StepDocuments:
		return "documents"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// IntentProvider acquires a payment confirmation secret on the trusted boundary.
type IntentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, payer domain.Profile) (domain.PaymentIntent, error)
}

// PaymentConfirmer confirms an intent in place, without redirects.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, clientSecret, paymentMethod string) (domain.PaymentResult, error)
}

// Submission is everything needed to persist a paid checkout.
type Submission struct {
	SessionID     string
	Payer         domain.Profile
	Draft         Draft
	Quote         pricing.Quote
	DeliveryFee   int64
	DownPayment   *int64
	TransactionID string
	CustomerID    string
}

// Submitter persists a paid checkout and returns the new booking id.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (string, error)
}

// State is one of DatesAndOptions, Documents, Payment or Confirmation. Each
// state only exposes the transitions legal from it.
type State interface {
	Step() Step
	Draft() Draft
	sealed()
}

// DatesAndOptions is step 1.
type DatesAndOptions struct {
	draft Draft
}

// Documents is step 2.
type Documents struct {
	draft Draft
}

// Payment is step 3. A payment whose confirmation succeeded keeps its
// transaction id so a failed submission can be retried without charging again.
type Payment struct {
	draft  Draft
	intent domain.PaymentIntent
	paidTx string
}

// Confirmation is the terminal step 4.
type Confirmation struct {
	draft     Draft
	bookingID string
	paidTx    string
}

func (DatesAndOptions) Step() Step { return StepDatesAndOptions }
func (Documents) Step() Step       { return StepDocuments }
func (Payment) Step() Step         { return StepPayment }
func (Confirmation) Step() Step    { return StepConfirmation }

func (s DatesAndOptions) Draft() Draft { return s.draft }
func (s Documents) Draft() Draft       { return s.draft }
func (s Payment) Draft() Draft         { return s.draft }
func (s Confirmation) Draft() Draft    { return s.draft }

func (DatesAndOptions) sealed() {}
func (Documents) sealed()       {}
func (Payment) sealed()         {}
func (Confirmation) sealed()    {}

// Start opens a fresh flow on step 1.
func Start(d Draft) DatesAndOptions {
	return DatesAndOptions{draft: d.clone()}
}

// WithDates replaces the selected range. Malformed dates are rejected; an
// inverted range is accepted here and caught by Next.
func (s DatesAndOptions) WithDates(startDate, endDate string) (DatesAndOptions, error) {
	for _, v := range []string{startDate, endDate} {
		if v == "" {
			continue
		}
		if _, err := pricing.ParseDate(v); err != nil {
			return s, &ValidationError{Step: StepDatesAndOptions, Message: err.Error()}
		}
	}
	d := s.draft.clone()
	d.StartDate = startDate
	d.EndDate = endDate
	return DatesAndOptions{draft: d}, nil
}

func (s DatesAndOptions) WithDelivery(enabled bool, address string) DatesAndOptions {
	d := s.draft.clone()
	d.Delivery = enabled
	d.DeliveryAddress = strings.TrimSpace(address)
	return DatesAndOptions{draft: d}
}

func (s DatesAndOptions) WithPaymentOption(option domain.PaymentOption) (DatesAndOptions, error) {
	d, err := withPaymentOption(s.draft, option, StepDatesAndOptions)
	return DatesAndOptions{draft: d}, err
}

// Next moves to the documents step once a valid range is selected and, when
// delivery is on, an address is given.
func (s DatesAndOptions) Next(p Policy) (Documents, error) {
	if s.draft.Quote(p).DurationDays <= 0 {
		return Documents{}, &ValidationError{Step: StepDatesAndOptions, Message: "please select a valid date range"}
	}
	if s.draft.Delivery && s.draft.DeliveryAddress == "" {
		return Documents{}, &ValidationError{Step: StepDatesAndOptions, Message: "please enter a delivery address"}
	}
	return Documents{draft: s.draft.clone()}, nil
}

// Attach captures a file for one slot, replacing any previous one.
func (s Documents) Attach(docType domain.DocumentType, doc Document) (Documents, error) {
	d := s.draft.clone()
	if err := d.Documents.Attach(docType, doc); err != nil {
		return s, &ValidationError{Step: StepDocuments, Message: err.Error()}
	}
	return Documents{draft: d}, nil
}

func (s Documents) WithPaymentOption(option domain.PaymentOption) (Documents, error) {
	d, err := withPaymentOption(s.draft, option, StepDocuments)
	return Documents{draft: d}, err
}

func (s Documents) Previous() DatesAndOptions {
	return DatesAndOptions{draft: s.draft.clone()}
}

// Next requires all four documents, then acquires a payment intent for the
// amount due. The step only advances once the intent is obtained.
func (s Documents) Next(ctx context.Context, intents IntentProvider, payer domain.Profile, p Policy) (Payment, error) {
	if !s.draft.Documents.Complete() {
		return Payment{}, &ValidationError{Step: StepDocuments, Message: "please upload the 4 required documents"}
	}
	intent, err := acquireIntent(ctx, intents, s.draft, payer, p)
	if err != nil {
		return Payment{}, err
	}
	return Payment{draft: s.draft.clone(), intent: intent}, nil
}

func (s Payment) Intent() domain.PaymentIntent { return s.intent }

// Paid reports whether the payment already succeeded.
func (s Payment) Paid() bool { return s.paidTx != "" }

func (s Payment) Previous() (Documents, error) {
	if s.Paid() {
		return Documents{}, ErrAlreadyPaid
	}
	return Documents{draft: s.draft.clone()}, nil
}

// Reprice switches the payment option and acquires a new intent for the new amount.
func (s Payment) Reprice(ctx context.Context, option domain.PaymentOption, intents IntentProvider, payer domain.Profile, p Policy) (Payment, error) {
	if s.Paid() {
		return s, ErrAlreadyPaid
	}
	d, err := withPaymentOption(s.draft, option, StepPayment)
	if err != nil {
		return s, err
	}
	intent, err := acquireIntent(ctx, intents, d, payer, p)
	if err != nil {
		return s, err
	}
	return Payment{draft: d, intent: intent}, nil
}

// Confirm charges the intent and, on success, submits the booking. Any
// failure keeps the flow on step 3; the returned Payment carries the
// transaction id when the charge went through but submission failed.
func (s Payment) Confirm(ctx context.Context, sessionID, paymentMethod string, payer domain.Profile, p Policy, confirmer PaymentConfirmer, submitter Submitter) (State, error) {
	if !s.Paid() {
		result, err := confirmer.Confirm(ctx, s.intent.ClientSecret, paymentMethod)
		if err != nil {
			return s, &CollaboratorError{Op: "confirm payment", Message: userMessage(err, "payment failed, please try again"), Err: err}
		}
		if !result.Succeeded {
			return s, &CollaboratorError{
				Op:      "confirm payment",
				Message: "payment did not succeed, please try again",
				Err:     errors.New("payment status " + result.Status),
			}
		}
		s.paidTx = result.TransactionID
		if s.paidTx == "" {
			s.paidTx = s.intent.TransactionID
		}
	}

	if s.intent.CustomerID == "" {
		return s, &CollaboratorError{Op: "submit booking", Message: "payment customer id missing, cannot finalize the booking", Err: errors.New("empty customer id")}
	}

	bookingID, err := submitter.Submit(ctx, Submission{
		SessionID:     sessionID,
		Payer:         payer,
		Draft:         s.draft.clone(),
		Quote:         s.draft.Quote(p),
		DeliveryFee:   s.draft.DeliveryFee(p),
		DownPayment:   s.draft.DownPayment(p),
		TransactionID: s.paidTx,
		CustomerID:    s.intent.CustomerID,
	})
	if err != nil {
		return s, &CollaboratorError{Op: "submit booking", Message: "error while creating the booking: " + err.Error(), Err: err}
	}
	return Confirmation{draft: s.draft, bookingID: bookingID, paidTx: s.paidTx}, nil
}

func (s Confirmation) BookingID() string { return s.bookingID }

func withPaymentOption(d Draft, option domain.PaymentOption, step Step) (Draft, error) {
	if !option.Valid() {
		return d, &ValidationError{Step: step, Message: "unknown payment option " + string(option)}
	}
	out := d.clone()
	out.PaymentOption = option
	return out, nil
}

func acquireIntent(ctx context.Context, intents IntentProvider, d Draft, payer domain.Profile, p Policy) (domain.PaymentIntent, error) {
	amount := d.AmountDue(p)
	if amount <= 0 {
		return domain.PaymentIntent{}, &ValidationError{Step: StepDocuments, Message: "nothing to pay for this booking"}
	}
	intent, err := intents.CreateIntent(ctx, amount, p.Currency, payer)
	if err != nil {
		return domain.PaymentIntent{}, &CollaboratorError{Op: "create payment intent", Message: "unable to initialize the payment, please try again", Err: err}
	}
	if intent.ClientSecret == "" {
		return domain.PaymentIntent{}, &CollaboratorError{Op: "create payment intent", Message: "unable to initialize the payment, please try again", Err: errors.New("empty client secret")}
	}
	return intent, nil
}
