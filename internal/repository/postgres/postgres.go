package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"carrental-backend/internal/repository"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.ProfileRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		BookingRepository: NewBookingRepository(db),
		ProfileRepository: NewProfileRepository(db),
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
