package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type bookingRepository struct {
	client *firestore.Client
}

func NewBookingRepository(client *firestore.Client) repository.BookingRepository {
	return &bookingRepository{client: client}
}

// Create adds the booking document. createdAt is set by the server.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.ExternalServiceCall("firestore", "CreateBooking", "userID", b.UserID)
	ref, wr, err := r.client.Collection(bookingsCollection).Add(ctx, toBookingRecord(b))
	logger.ExternalServiceResult("firestore", "CreateBooking", err, "userID", b.UserID)
	if err != nil {
		return err
	}
	b.ID = ref.ID
	b.CreatedAt = wr.UpdateTime
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	snap, err := r.client.Collection(bookingsCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec bookingRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode booking %s: %w", id, err)
	}
	b := rec.toDomain(snap.Ref.ID)
	return &b, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	q := r.client.Collection(bookingsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return r.list(ctx, "ListBookingsByUser", q)
}

func (r *bookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	q := r.client.Collection(bookingsCollection).OrderBy("createdAt", firestore.Desc)
	return r.list(ctx, "ListAllBookings", q)
}

// UpdateStatus reads and writes the status in one transaction so two admins
// cannot both move a booking out of the same status.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	ref := r.client.Collection(bookingsCollection).Doc(id)
	logger.ExternalServiceCall("firestore", "UpdateBookingStatus", "bookingID", id, "from", from, "to", to)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, _ := snap.DataAt("status")
		if err := checkStatus(id, current, from); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{{Path: "status", Value: string(to)}})
	})
	logger.ExternalServiceResult("firestore", "UpdateBookingStatus", err, "bookingID", id)
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	return err
}

func (r *bookingRepository) CountByStatus(ctx context.Context, st domain.BookingStatus) (int, error) {
	docs, err := r.client.Collection(bookingsCollection).
		Where("status", "==", string(st)).
		Select().
		Documents(ctx).
		GetAll()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (r *bookingRepository) list(ctx context.Context, op string, q firestore.Query) ([]domain.Booking, error) {
	logger.ExternalServiceCall("firestore", op)
	iter := q.Documents(ctx)
	defer iter.Stop()

	bookings := []domain.Booking{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.ExternalServiceResult("firestore", op, err)
			return nil, err
		}
		var rec bookingRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode booking %s: %w", snap.Ref.ID, err)
		}
		bookings = append(bookings, rec.toDomain(snap.Ref.ID))
	}
	logger.ExternalServiceResult("firestore", op, nil, "count", len(bookings))
	return bookings, nil
}
