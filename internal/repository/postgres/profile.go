package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	p := &domain.Profile{}
	query := `SELECT uid, first_name, last_name, email, phone, address, COALESCE(payment_customer_id, '') FROM profiles WHERE uid = $1`
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&p.UID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Address, &p.PaymentCustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (uid, first_name, last_name, email, phone, address, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`
	logger.DatabaseCall("CreateProfile", "INSERT INTO profiles", "uid", p.UID)
	_, err := r.db.ExecContext(ctx, query, p.UID, p.FirstName, p.LastName, p.Email, p.Phone, p.Address)
	logger.DatabaseResult("CreateProfile", 1, err, "uid", p.UID)
	return err
}

// Update writes only the fields set on upd.
func (r *profileRepository) Update(ctx context.Context, uid string, upd domain.ProfileUpdate) error {
	var sets []string
	var args []any
	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("phone", upd.Phone)
	add("address", upd.Address)
	add("payment_customer_id", upd.PaymentCustomerID)
	if len(sets) == 0 {
		return nil
	}

	args = append(args, uid)
	query := fmt.Sprintf("UPDATE profiles SET %s, updated_on = NOW() WHERE uid = $%d", strings.Join(sets, ", "), len(args))
	logger.DatabaseCall("UpdateProfile", query, "uid", uid)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("UpdateProfile", 0, err)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UpdateProfile", n, nil)
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
