package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

func identity() domain.Identity {
	return domain.Identity{UID: "user-1", Email: "jane@example.com", DisplayName: "Jane Mary Doe"}
}

func TestAccountService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("first sign-in creates the profile", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		svc := NewAccountService(profiles, new(MockBookingRepo), new(MockIdentityVerifier), allowAll(false))

		profiles.On("GetByUID", ctx, "user-1").Return(nil, repository.ErrNotFound)
		profiles.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.FirstName == "Jane" && p.LastName == "Mary Doe" && p.Email == "jane@example.com"
		})).Return(nil)

		p, err := svc.Resolve(ctx, identity())
		require.NoError(t, err)
		assert.Equal(t, "user-1", p.UID)
		assert.False(t, p.IsAdmin)
		profiles.AssertExpectations(t)
	})

	t.Run("admin flag comes from policy, not storage", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		stored := &domain.Profile{UID: "user-1", IsAdmin: true}
		profiles.On("GetByUID", ctx, "user-1").Return(stored, nil)

		svc := NewAccountService(profiles, new(MockBookingRepo), new(MockIdentityVerifier), allowAll(false))
		p, err := svc.Resolve(ctx, identity())
		require.NoError(t, err)
		assert.False(t, p.IsAdmin)

		svc = NewAccountService(profiles, new(MockBookingRepo), new(MockIdentityVerifier), allowAll(true))
		p, err = svc.Resolve(ctx, identity())
		require.NoError(t, err)
		assert.True(t, p.IsAdmin)
	})

	t.Run("store failure terminates the session", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		verifier := new(MockIdentityVerifier)
		svc := NewAccountService(profiles, new(MockBookingRepo), verifier, allowAll(false))

		profiles.On("GetByUID", ctx, "user-1").Return(nil, errors.New("unavailable"))
		verifier.On("Revoke", ctx, "user-1").Return(nil)

		_, err := svc.Resolve(ctx, identity())
		assert.ErrorIs(t, err, ErrSessionTerminated)
		verifier.AssertExpectations(t)
	})

	t.Run("create failure terminates the session", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		verifier := new(MockIdentityVerifier)
		svc := NewAccountService(profiles, new(MockBookingRepo), verifier, allowAll(false))

		profiles.On("GetByUID", ctx, "user-1").Return(nil, repository.ErrNotFound)
		profiles.On("Create", ctx, mock.Anything).Return(errors.New("denied"))
		verifier.On("Revoke", ctx, "user-1").Return(errors.New("also down"))

		_, err := svc.Resolve(ctx, identity())
		assert.ErrorIs(t, err, ErrSessionTerminated)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	phone := " +33600000000 "
	address := "1 rue de Paris"

	t.Run("trims and saves", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		svc := NewAccountService(profiles, new(MockBookingRepo), new(MockIdentityVerifier), allowAll(false))

		profiles.On("GetByUID", ctx, "user-1").Return(&domain.Profile{UID: "user-1"}, nil).Once()
		profiles.On("Update", ctx, "user-1", mock.MatchedBy(func(u domain.ProfileUpdate) bool {
			return u.Phone != nil && *u.Phone == "+33600000000" && u.PaymentCustomerID == nil
		})).Return(nil)
		profiles.On("GetByUID", ctx, "user-1").Return(&domain.Profile{UID: "user-1", Phone: "+33600000000", Address: address}, nil).Once()

		p, err := svc.UpdateProfile(ctx, identity(), domain.ProfileUpdate{Phone: &phone, Address: &address})
		require.NoError(t, err)
		assert.True(t, p.IsComplete())
		profiles.AssertExpectations(t)
	})

	t.Run("customer id cannot be set by the user", func(t *testing.T) {
		svc := NewAccountService(new(MockProfileRepo), new(MockBookingRepo), new(MockIdentityVerifier), allowAll(false))
		cus := "cus_evil"
		_, err := svc.UpdateProfile(ctx, identity(), domain.ProfileUpdate{PaymentCustomerID: &cus})
		assert.ErrorIs(t, err, ErrEmptyProfileUpdate)
	})

	t.Run("blank phone is rejected", func(t *testing.T) {
		svc := NewAccountService(new(MockProfileRepo), new(MockBookingRepo), new(MockIdentityVerifier), allowAll(false))
		blank := "   "
		_, err := svc.UpdateProfile(ctx, identity(), domain.ProfileUpdate{Phone: &blank})
		assert.ErrorIs(t, err, ErrProfileIncomplete)
	})
}

func TestAccountService_ListBookings(t *testing.T) {
	ctx := context.Background()
	bookings := new(MockBookingRepo)
	svc := NewAccountService(new(MockProfileRepo), bookings, new(MockIdentityVerifier), allowAll(false))

	bookings.On("ListByUser", ctx, "user-1").Return([]domain.Booking{{ID: "b2"}, {ID: "b1"}}, nil).Once()
	list := svc.ListBookings(ctx, "user-1")
	require.Len(t, list, 2)
	assert.Equal(t, "b2", list[0].ID)

	bookings.On("ListByUser", ctx, "user-1").Return(nil, errors.New("down")).Once()
	list = svc.ListBookings(ctx, "user-1")
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
