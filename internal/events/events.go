package events

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is created or changes status.
type BookingEvent struct {
	Type            string               `json:"type"`
	BookingID       string               `json:"booking_id"`
	UserID          string               `json:"user_id"`
	VehicleID       int32                `json:"vehicle_id"`
	Status          domain.BookingStatus `json:"status"`
	PreviousStatus  domain.BookingStatus `json:"previous_status,omitempty"`
	TotalPriceCents int64                `json:"total_price_cents"`
	OccurredAt      time.Time            `json:"occurred_at"`
}

func NewBookingCreated(b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:            TypeBookingCreated,
		BookingID:       b.ID,
		UserID:          b.UserID,
		VehicleID:       b.Vehicle.ID,
		Status:          b.Status,
		TotalPriceCents: b.TotalPriceCents,
		OccurredAt:      time.Now().UTC(),
	}
}

func NewBookingStatusChanged(b *domain.Booking, previous domain.BookingStatus) BookingEvent {
	evt := NewBookingCreated(b)
	evt.Type = TypeBookingStatusChanged
	evt.PreviousStatus = previous
	return evt
}

type Publisher interface {
	Publish(ctx context.Context, evt BookingEvent) error
	Close() error
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, evt BookingEvent) error { return nil }
func (NoopPublisher) Close() error                                        { return nil }
