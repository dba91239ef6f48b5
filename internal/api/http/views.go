package http

import (
	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
)

type documentView struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes"`
}

// checkoutView is the client-facing shape of a session. Document bytes
// never leave the server.
type checkoutView struct {
	ID               string                               `json:"id"`
	Step             checkout.Step                        `json:"step"`
	StepName         string                               `json:"step_name"`
	Vehicle          domain.Vehicle                       `json:"vehicle"`
	StartDate        string                               `json:"start_date"`
	EndDate          string                               `json:"end_date"`
	Delivery         bool                                 `json:"delivery"`
	DeliveryAddress  string                               `json:"delivery_address"`
	PaymentOption    domain.PaymentOption                 `json:"payment_option"`
	Quote            pricing.Quote                        `json:"quote"`
	AmountDueCents   int64                                `json:"amount_due_cents"`
	Currency         string                               `json:"currency"`
	Documents        map[domain.DocumentType]documentView `json:"documents"`
	MissingDocuments []domain.DocumentType                `json:"missing_documents"`
	ClientSecret     string                               `json:"client_secret,omitempty"`
	Paid             bool                                 `json:"paid"`
	BookingID        string                               `json:"booking_id,omitempty"`
	LastError        string                               `json:"last_error,omitempty"`
}

func newCheckoutView(sess *checkout.Session, policy checkout.Policy) checkoutView {
	d := sess.Draft
	v := checkoutView{
		ID:               sess.ID,
		Step:             sess.Step,
		StepName:         sess.Step.String(),
		Vehicle:          d.Vehicle,
		StartDate:        d.StartDate,
		EndDate:          d.EndDate,
		Delivery:         d.Delivery,
		DeliveryAddress:  d.DeliveryAddress,
		PaymentOption:    d.PaymentOption,
		Quote:            d.Quote(policy),
		AmountDueCents:   d.AmountDue(policy),
		Currency:         policy.Currency,
		Documents:        make(map[domain.DocumentType]documentView, len(d.Documents)),
		MissingDocuments: d.Documents.Missing(),
		Paid:             sess.PaidTransactionID != "",
		BookingID:        sess.BookingID,
		LastError:        sess.LastError,
	}
	for t, doc := range d.Documents {
		v.Documents[t] = documentView{FileName: doc.FileName, ContentType: doc.ContentType, SizeBytes: len(doc.Data)}
	}
	if v.MissingDocuments == nil {
		v.MissingDocuments = []domain.DocumentType{}
	}
	if sess.Step == checkout.StepPayment && sess.Intent != nil && !v.Paid {
		v.ClientSecret = sess.Intent.ClientSecret
	}
	if sess.Step == checkout.StepConfirmation {
		v.MissingDocuments = []domain.DocumentType{}
	}
	return v
}
