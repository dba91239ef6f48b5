package checkout

import (
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
)

// Policy holds the fixed amounts applied to every checkout.
type Policy struct {
	DeliveryFeeCents int64
	DownPaymentCents int64
	Currency         string
}

// Draft is the in-progress checkout of one vehicle. Price fields are never
// stored; Quote recomputes them from the inputs.
type Draft struct {
	Vehicle         domain.Vehicle       `json:"vehicle"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	Delivery        bool                 `json:"delivery"`
	DeliveryAddress string               `json:"delivery_address"`
	PaymentOption   domain.PaymentOption `json:"payment_option"`
	Documents       DocumentSet          `json:"documents"`
}

// Seed is the optional pre-selection carried over from the vehicle page.
type Seed struct {
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Delivery        bool   `json:"delivery"`
	DeliveryAddress string `json:"delivery_address"`
}

func NewDraft(vehicle domain.Vehicle, seed *Seed) Draft {
	d := Draft{
		Vehicle:       vehicle,
		PaymentOption: domain.PaymentOptionFull,
		Documents:     DocumentSet{},
	}
	if seed != nil {
		d.StartDate = seed.StartDate
		d.EndDate = seed.EndDate
		d.Delivery = seed.Delivery
		d.DeliveryAddress = strings.TrimSpace(seed.DeliveryAddress)
	}
	return d
}

// Quote prices the draft. Unparseable dates price as an empty period.
func (d Draft) Quote(p Policy) pricing.Quote {
	q, err := pricing.CalculateDates(d.StartDate, d.EndDate, d.Vehicle.Rates, d.Delivery, p.DeliveryFeeCents)
	if err != nil {
		q, _ = pricing.CalculateDates("", "", d.Vehicle.Rates, d.Delivery, p.DeliveryFeeCents)
	}
	return q
}

// AmountDue is what the payment step charges: the total, or the fixed down
// payment when that option is chosen.
func (d Draft) AmountDue(p Policy) int64 {
	if d.PaymentOption == domain.PaymentOptionDownPayment {
		return p.DownPaymentCents
	}
	return d.Quote(p).TotalPriceCents
}

// DownPayment returns the down payment recorded on the booking, or nil for a full payment.
func (d Draft) DownPayment(p Policy) *int64 {
	if d.PaymentOption != domain.PaymentOptionDownPayment {
		return nil
	}
	amount := p.DownPaymentCents
	return &amount
}

// DeliveryFee is the fee recorded on the booking's delivery sub-record.
func (d Draft) DeliveryFee(p Policy) int64 {
	if !d.Delivery {
		return 0
	}
	return p.DeliveryFeeCents
}

func (d Draft) clone() Draft {
	out := d
	out.Documents = d.Documents.clone()
	return out
}
