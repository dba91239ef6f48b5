package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

const bookingColumns = `id, user_id, vehicle, renter_first_name, renter_last_name, renter_email, renter_phone, renter_address,
	start_date, end_date, duration_days, total_price_cents, included_km,
	delivery_enabled, delivery_address, delivery_fee_cents,
	license_front_url, license_back_url, identity_url, proof_of_address_url,
	status, payment_option, down_payment_cents, payment_transaction_id, payment_customer_id, created_on`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	vehicle, err := json.Marshal(b.Vehicle)
	if err != nil {
		return fmt.Errorf("failed to encode vehicle snapshot: %w", err)
	}
	var downPayment sql.NullInt64
	if b.DownPaymentCents != nil {
		downPayment = sql.NullInt64{Int64: *b.DownPaymentCents, Valid: true}
	}

	query := `INSERT INTO bookings (user_id, vehicle, renter_first_name, renter_last_name, renter_email, renter_phone, renter_address,
	          start_date, end_date, duration_days, total_price_cents, included_km,
	          delivery_enabled, delivery_address, delivery_fee_cents,
	          license_front_url, license_back_url, identity_url, proof_of_address_url,
	          status, payment_option, down_payment_cents, payment_transaction_id, payment_customer_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	          RETURNING id, created_on`

	logger.DatabaseCall("CreateBooking", "INSERT INTO bookings", "userID", b.UserID)
	err = r.db.QueryRowContext(ctx, query,
		b.UserID, vehicle, b.Renter.FirstName, b.Renter.LastName, b.Renter.Email, b.Renter.Phone, b.Renter.Address,
		b.StartDate, b.EndDate, b.DurationDays, b.TotalPriceCents, b.IncludedKm,
		b.Delivery.Enabled, b.Delivery.Address, b.Delivery.FeeCents,
		b.Documents.LicenseFront, b.Documents.LicenseBack, b.Documents.Identity, b.Documents.ProofOfAddress,
		b.Status, b.PaymentOption, downPayment, b.PaymentTransactionID, b.PaymentCustomerID,
	).Scan(&b.ID, &b.CreatedAt)
	logger.DatabaseResult("CreateBooking", 1, err, "bookingID", b.ID)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_on DESC`
	return r.list(ctx, "ListBookingsByUser", query, userID)
}

func (r *bookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_on DESC`
	return r.list(ctx, "ListAllBookings", query)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_on = NOW() WHERE id = $2 AND status = $3`
	logger.DatabaseCall("UpdateBookingStatus", query, "bookingID", id, "from", from, "to", to)
	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		logger.DatabaseResult("UpdateBookingStatus", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UpdateBookingStatus", n, err)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// nothing matched: either the booking is gone or its status moved on
	var current string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: booking %s is %s", repository.ErrStatusChanged, id, current)
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status domain.BookingStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM bookings WHERE status = $1`, status).Scan(&count)
	return count, err
}

func (r *bookingRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Booking, error) {
	logger.DatabaseCall(op, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return nil, err
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult(op, int64(len(bookings)), nil)
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var vehicle []byte
	var downPayment sql.NullInt64
	err := row.Scan(&b.ID, &b.UserID, &vehicle,
		&b.Renter.FirstName, &b.Renter.LastName, &b.Renter.Email, &b.Renter.Phone, &b.Renter.Address,
		&b.StartDate, &b.EndDate, &b.DurationDays, &b.TotalPriceCents, &b.IncludedKm,
		&b.Delivery.Enabled, &b.Delivery.Address, &b.Delivery.FeeCents,
		&b.Documents.LicenseFront, &b.Documents.LicenseBack, &b.Documents.Identity, &b.Documents.ProofOfAddress,
		&b.Status, &b.PaymentOption, &downPayment, &b.PaymentTransactionID, &b.PaymentCustomerID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(vehicle, &b.Vehicle); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle snapshot of booking %s: %w", b.ID, err)
	}
	if downPayment.Valid {
		v := downPayment.Int64
		b.DownPaymentCents = &v
	}
	return &b, nil
}
