// Package advisor holds optional AI assistance for the booking flow. Every
// method returns nil when the capability is unavailable or fails; callers
// treat nil as "no advice" and carry on.
package advisor

import (
	"context"

	"carrental-backend/internal/domain"
)

// Suggestion is a recommended vehicle for a described trip.
type Suggestion struct {
	VehicleID     int32  `json:"vehicle_id"`
	VehicleName   string `json:"vehicle_name"`
	Justification string `json:"justification"`
}

// Verification is an advisory cross-check of a booking's documents against
// the renter's profile.
type Verification struct {
	NameMatch    bool   `json:"name_match"`
	AddressMatch bool   `json:"address_match"`
	Summary      string `json:"summary"`
}

type Advisor interface {
	SuggestVehicle(ctx context.Context, tripDescription string, vehicles []domain.Vehicle) *Suggestion
	VerifyDocuments(ctx context.Context, b *domain.Booking) *Verification
}

// Noop is the advisor used when AI assistance is disabled.
type Noop struct{}

func (Noop) SuggestVehicle(ctx context.Context, tripDescription string, vehicles []domain.Vehicle) *Suggestion {
	return nil
}

func (Noop) VerifyDocuments(ctx context.Context, b *domain.Booking) *Verification {
	return nil
}
