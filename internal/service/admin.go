package service

import (
	"context"
	"errors"
	"fmt"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

// StatusFilter narrows the review queue to one status, or "all".
type StatusFilter string

const FilterAll StatusFilter = "all"

// ParseStatusFilter defaults to pending when raw is empty.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	if raw == "" {
		return StatusFilter(domain.BookingStatusPending), nil
	}
	f := StatusFilter(raw)
	if f == FilterAll || domain.BookingStatus(raw).Valid() {
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidStatus, raw)
}

func (f StatusFilter) Match(s domain.BookingStatus) bool {
	return f == FilterAll || domain.BookingStatus(f) == s
}

var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingStatusPending:   {domain.BookingStatusConfirmed, domain.BookingStatusRejected},
	domain.BookingStatusConfirmed: {domain.BookingStatusCompleted},
}

// AllowedTransitions lists the statuses an admin may move a booking to.
// Rejected and completed bookings are final.
func AllowedTransitions(from domain.BookingStatus) []domain.BookingStatus {
	return append([]domain.BookingStatus{}, transitions[from]...)
}

func CanTransition(from, to domain.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReviewItem is one row of the admin queue with the actions it exposes.
type ReviewItem struct {
	domain.Booking
	Transitions []domain.BookingStatus `json:"transitions"`
}

type adminService struct {
	bookingRepo repository.BookingRepository
	emailSvc    EmailService
	publisher   events.Publisher
	advisor     advisor.Advisor
}

func NewAdminService(
	bookingRepo repository.BookingRepository,
	emailSvc EmailService,
	publisher events.Publisher,
	adv advisor.Advisor,
) AdminService {
	return &adminService{
		bookingRepo: bookingRepo,
		emailSvc:    emailSvc,
		publisher:   publisher,
		advisor:     adv,
	}
}

func (s *adminService) ListBookings(ctx context.Context, filter StatusFilter) ([]ReviewItem, error) {
	all, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	items := []ReviewItem{}
	for _, b := range all {
		if filter.Match(b.Status) {
			items = append(items, ReviewItem{Booking: b, Transitions: AllowedTransitions(b.Status)})
		}
	}
	return items, nil
}

// Transition applies one sanctioned status change and returns the queue
// reloaded from the store.
func (s *adminService) Transition(ctx context.Context, bookingID string, to domain.BookingStatus, filter StatusFilter) ([]ReviewItem, error) {
	logger.EnterMethod("adminService.Transition", "bookingID", bookingID, "to", to)

	if !to.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, to)
	}
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, to) {
		logger.ExitMethodWithError("adminService.Transition", ErrInvalidTransition, "from", b.Status, "to", to)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, b.Status, to); err != nil {
		logger.ExitMethodWithError("adminService.Transition", err, "bookingID", bookingID)
		switch {
		case errors.Is(err, repository.ErrStatusChanged):
			// another admin moved it first
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	previous := b.Status
	b.Status = to
	if err := s.emailSvc.SendStatusChanged(ctx, b); err != nil {
		logger.Warn("Failed to send status change email", "bookingID", bookingID, "error", err)
	}
	if err := s.publisher.Publish(ctx, events.NewBookingStatusChanged(b, previous)); err != nil {
		logger.Warn("Failed to publish status change event", "bookingID", bookingID, "error", err)
	}

	logger.ExitMethod("adminService.Transition", "bookingID", bookingID, "status", to)
	return s.ListBookings(ctx, filter)
}

func (s *adminService) VerifyDocuments(ctx context.Context, bookingID string) (*advisor.Verification, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.advisor.VerifyDocuments(ctx, b), nil
}

func (s *adminService) PendingCount(ctx context.Context) (int, error) {
	return s.bookingRepo.CountByStatus(ctx, domain.BookingStatusPending)
}
