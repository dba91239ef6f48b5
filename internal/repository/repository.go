package repository

import (
	"context"
	"errors"

	"carrental-backend/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusChanged means a conditional status update found the record in
	// another status than expected.
	ErrStatusChanged = errors.New("record status changed concurrently")
)

// BookingRepository persists completed bookings. List methods return the
// newest bookings first.
type BookingRepository interface {
	// Create stores b, assigning its ID and creation time.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	// UpdateStatus moves the booking from one status to another. It fails
	// with ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error
	CountByStatus(ctx context.Context, status domain.BookingStatus) (int, error)
}

type ProfileRepository interface {
	GetByUID(ctx context.Context, uid string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, uid string, upd domain.ProfileUpdate) error
}
