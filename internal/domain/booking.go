package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected, BookingStatusCompleted:
		return true
	}
	return false
}

type PaymentOption string

const (
	PaymentOptionFull        PaymentOption = "full"
	PaymentOptionDownPayment PaymentOption = "down_payment"
)

func (o PaymentOption) Valid() bool {
	return o == PaymentOptionFull || o == PaymentOptionDownPayment
}

type Delivery struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	FeeCents int64  `json:"fee_cents"`
}

// Renter is the identity snapshot copied onto a booking.
type Renter struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (r Renter) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// BookingDocuments holds the addresses of the four uploaded documents.
type BookingDocuments struct {
	LicenseFront   string `json:"license_front"`
	LicenseBack    string `json:"license_back"`
	Identity       string `json:"identity"`
	ProofOfAddress string `json:"proof_of_address"`
}

// Set stores url under the field matching docType.
func (d *BookingDocuments) Set(docType DocumentType, url string) {
	switch docType {
	case DocumentLicenseFront:
		d.LicenseFront = url
	case DocumentLicenseBack:
		d.LicenseBack = url
	case DocumentIdentity:
		d.Identity = url
	case DocumentProofOfAddress:
		d.ProofOfAddress = url
	}
}

// Booking is the persisted snapshot of a completed checkout. Only Status
// changes after creation.
type Booking struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"user_id"`
	Vehicle              Vehicle          `json:"vehicle"`
	Renter               Renter           `json:"renter"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	DurationDays         int              `json:"duration_days"`
	TotalPriceCents      int64            `json:"total_price_cents"`
	IncludedKm           int64            `json:"included_km"`
	Delivery             Delivery         `json:"delivery"`
	Documents            BookingDocuments `json:"documents"`
	Status               BookingStatus    `json:"status"`
	PaymentOption        PaymentOption    `json:"payment_option"`
	DownPaymentCents     *int64           `json:"down_payment_cents,omitempty"`
	PaymentTransactionID string           `json:"payment_transaction_id"`
	PaymentCustomerID    string           `json:"payment_customer_id"`
	CreatedAt            time.Time        `json:"created_at"`
}
