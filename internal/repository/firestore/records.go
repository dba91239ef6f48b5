package firestore

import (
	"fmt"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

const (
	bookingsCollection = "bookings"
	usersCollection    = "users"
)

type rateTierRecord struct {
	PriceCents int64 `firestore:"priceCents"`
	IncludedKm int64 `firestore:"includedKm"`
}

type vehicleRecord struct {
	ID                int32          `firestore:"id"`
	Name              string         `firestore:"name"`
	Brand             string         `firestore:"brand"`
	BrandLogoURL      string         `firestore:"brandLogo"`
	ImageURL          string         `firestore:"imageUrl"`
	Gearbox           string         `firestore:"gearbox"`
	Fuel              string         `firestore:"fuel"`
	Day               rateTierRecord `firestore:"day"`
	Week              rateTierRecord `firestore:"week"`
	Month             rateTierRecord `firestore:"month"`
	ExtraKmPriceCents int64          `firestore:"extraKmPriceCents"`
	DepositCents      int64          `firestore:"depositCents"`
	Gallery           []string       `firestore:"gallery"`
}

type deliveryRecord struct {
	Enabled  bool   `firestore:"enabled"`
	Address  string `firestore:"address"`
	FeeCents int64  `firestore:"feeCents"`
}

type renterRecord struct {
	FirstName string `firestore:"firstName"`
	LastName  string `firestore:"lastName"`
	Email     string `firestore:"email"`
	Phone     string `firestore:"phone"`
	Address   string `firestore:"address"`
}

type documentsRecord struct {
	LicenseFront   string `firestore:"licenseFront"`
	LicenseBack    string `firestore:"licenseBack"`
	Identity       string `firestore:"identity"`
	ProofOfAddress string `firestore:"proofOfAddress"`
}

type bookingRecord struct {
	UserID                string          `firestore:"userId"`
	Car                   vehicleRecord   `firestore:"car"`
	StartDate             string          `firestore:"startDate"`
	EndDate               string          `firestore:"endDate"`
	DurationInDays        int             `firestore:"durationInDays"`
	TotalPriceCents       int64           `firestore:"totalPriceCents"`
	IncludedKm            int64           `firestore:"includedKm"`
	Delivery              deliveryRecord  `firestore:"delivery"`
	User                  renterRecord    `firestore:"user"`
	Documents             documentsRecord `firestore:"documents"`
	Status                string          `firestore:"status"`
	PaymentOption         string          `firestore:"paymentOption"`
	DownPaymentCents      *int64          `firestore:"downPaymentCents,omitempty"`
	StripePaymentIntentID string          `firestore:"stripePaymentIntentId"`
	StripeCustomerID      string          `firestore:"stripeCustomerId"`
	CreatedAt             time.Time       `firestore:"createdAt,serverTimestamp"`
}

type profileRecord struct {
	FirstName        string `firestore:"firstName"`
	LastName         string `firestore:"lastName"`
	Email            string `firestore:"email"`
	Phone            string `firestore:"phone"`
	Address          string `firestore:"address"`
	StripeCustomerID string `firestore:"stripeCustomerId,omitempty"`
}

func toBookingRecord(b *domain.Booking) bookingRecord {
	v := b.Vehicle
	return bookingRecord{
		UserID: b.UserID,
		Car: vehicleRecord{
			ID:                v.ID,
			Name:              v.Name,
			Brand:             v.Brand,
			BrandLogoURL:      v.BrandLogoURL,
			ImageURL:          v.ImageURL,
			Gearbox:           string(v.Gearbox),
			Fuel:              v.Fuel,
			Day:               rateTierRecord(v.Rates.Day),
			Week:              rateTierRecord(v.Rates.Week),
			Month:             rateTierRecord(v.Rates.Month),
			ExtraKmPriceCents: v.ExtraKmPriceCents,
			DepositCents:      v.DepositCents,
			Gallery:           v.Gallery,
		},
		StartDate:             b.StartDate,
		EndDate:               b.EndDate,
		DurationInDays:        b.DurationDays,
		TotalPriceCents:       b.TotalPriceCents,
		IncludedKm:            b.IncludedKm,
		Delivery:              deliveryRecord(b.Delivery),
		User:                  renterRecord(b.Renter),
		Documents:             documentsRecord(b.Documents),
		Status:                string(b.Status),
		PaymentOption:         string(b.PaymentOption),
		DownPaymentCents:      b.DownPaymentCents,
		StripePaymentIntentID: b.PaymentTransactionID,
		StripeCustomerID:      b.PaymentCustomerID,
	}
}

func (r bookingRecord) toDomain(id string) domain.Booking {
	c := r.Car
	return domain.Booking{
		ID:     id,
		UserID: r.UserID,
		Vehicle: domain.Vehicle{
			ID:           c.ID,
			Name:         c.Name,
			Brand:        c.Brand,
			BrandLogoURL: c.BrandLogoURL,
			ImageURL:     c.ImageURL,
			Gearbox:      domain.GearboxType(c.Gearbox),
			Fuel:         c.Fuel,
			Rates: domain.RateTable{
				Day:   domain.RateTier(c.Day),
				Week:  domain.RateTier(c.Week),
				Month: domain.RateTier(c.Month),
			},
			ExtraKmPriceCents: c.ExtraKmPriceCents,
			DepositCents:      c.DepositCents,
			Gallery:           c.Gallery,
		},
		Renter:               domain.Renter(r.User),
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		DurationDays:         r.DurationInDays,
		TotalPriceCents:      r.TotalPriceCents,
		IncludedKm:           r.IncludedKm,
		Delivery:             domain.Delivery(r.Delivery),
		Documents:            domain.BookingDocuments(r.Documents),
		Status:               domain.BookingStatus(r.Status),
		PaymentOption:        domain.PaymentOption(r.PaymentOption),
		DownPaymentCents:     r.DownPaymentCents,
		PaymentTransactionID: r.StripePaymentIntentID,
		PaymentCustomerID:    r.StripeCustomerID,
		CreatedAt:            r.CreatedAt,
	}
}

func toProfileRecord(p *domain.Profile) profileRecord {
	return profileRecord{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Phone:            p.Phone,
		Address:          p.Address,
		StripeCustomerID: p.PaymentCustomerID,
	}
}

func (r profileRecord) toDomain(uid string) *domain.Profile {
	return &domain.Profile{
		UID:               uid,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Email:             r.Email,
		Phone:             r.Phone,
		Address:           r.Address,
		PaymentCustomerID: r.StripeCustomerID,
	}
}

// checkStatus is the precondition of a status update: the stored value must
// still be from.
func checkStatus(id string, current any, from domain.BookingStatus) error {
	if s, _ := current.(string); s != string(from) {
		return fmt.Errorf("%w: booking %s is %v", repository.ErrStatusChanged, id, current)
	}
	return nil
}
