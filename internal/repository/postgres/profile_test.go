package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

func TestProfileRepository_GetByUID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewProfileRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"uid", "first_name", "last_name", "email", "phone", "address", "payment_customer_id"}).
			AddRow("u1", "Jane", "Doe", "jane@example.com", "+336", "Paris", "cus_1")
		mock.ExpectQuery("SELECT (.+) FROM profiles WHERE uid = \\$1").WithArgs("u1").WillReturnRows(rows)

		p, err := repo.GetByUID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", p.PaymentCustomerID)
		assert.True(t, p.IsComplete())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM profiles").WithArgs("u2").WillReturnError(sql.ErrNoRows)
		_, err := repo.GetByUID(ctx, "u2")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestProfileRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewProfileRepository(db)
	ctx := context.Background()
	phone, address := "+336", "Paris"

	t.Run("Only set fields", func(t *testing.T) {
		mock.ExpectExec("UPDATE profiles SET phone = \\$1, address = \\$2, updated_on = NOW\\(\\) WHERE uid = \\$3").
			WithArgs(phone, address, "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, "u1", domain.ProfileUpdate{Phone: &phone, Address: &address})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty update is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.Update(ctx, "u1", domain.ProfileUpdate{}))
	})
}
