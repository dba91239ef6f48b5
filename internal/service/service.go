package service

import (
	"context"
	"errors"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrInvalidStatus      = errors.New("unknown booking status")
	ErrForbidden          = errors.New("admin rights required")
	ErrSessionTerminated  = errors.New("profile could not be resolved, session terminated")
	ErrProfileIncomplete  = errors.New("phone and address are required")
	ErrInvalidDateRange   = errors.New("end date must be after start date")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrEmptyProfileUpdate = errors.New("nothing to update")
)

type CatalogService interface {
	List() []domain.Vehicle
	Vehicle(id int32) (domain.Vehicle, bool)
	Quote(vehicleID int32, startDate, endDate string, delivery bool) (pricing.Quote, error)
	Suggest(ctx context.Context, tripDescription string) *advisor.Suggestion
}

type AccountService interface {
	// Resolve returns the caller's profile, creating it on first sign-in.
	Resolve(ctx context.Context, id domain.Identity) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.Profile, error)
	// ListBookings never fails; a lookup error yields an empty list.
	ListBookings(ctx context.Context, uid string) []domain.Booking
}

type AdminService interface {
	ListBookings(ctx context.Context, filter StatusFilter) ([]ReviewItem, error)
	Transition(ctx context.Context, bookingID string, to domain.BookingStatus, filter StatusFilter) ([]ReviewItem, error)
	VerifyDocuments(ctx context.Context, bookingID string) (*advisor.Verification, error)
	PendingCount(ctx context.Context) (int, error)
}

type EmailService interface {
	SendBookingReceived(ctx context.Context, b *domain.Booking) error
	SendNewBookingAlert(ctx context.Context, to []string, b *domain.Booking) error
	SendStatusChanged(ctx context.Context, b *domain.Booking) error
	SendPendingDigest(ctx context.Context, to []string, pending int) error
}
