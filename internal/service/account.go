package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/security"
)

type accountService struct {
	profileRepo repository.ProfileRepository
	bookingRepo repository.BookingRepository
	identity    security.IdentityVerifier
	admins      security.AdminPolicy
}

func NewAccountService(
	profileRepo repository.ProfileRepository,
	bookingRepo repository.BookingRepository,
	identity security.IdentityVerifier,
	admins security.AdminPolicy,
) AccountService {
	return &accountService{
		profileRepo: profileRepo,
		bookingRepo: bookingRepo,
		identity:    identity,
		admins:      admins,
	}
}

// Resolve loads or creates the profile of id. When the store cannot be
// reached the caller's session is revoked and ErrSessionTerminated returned.
func (s *accountService) Resolve(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	logger.EnterMethod("accountService.Resolve", "uid", id.UID)

	profile, err := s.profileRepo.GetByUID(ctx, id.UID)
	if errors.Is(err, repository.ErrNotFound) {
		profile = domain.NewProfileFromIdentity(id)
		err = s.profileRepo.Create(ctx, profile)
	}
	if err != nil {
		logger.ExitMethodWithError("accountService.Resolve", err, "uid", id.UID)
		if rerr := s.identity.Revoke(ctx, id.UID); rerr != nil {
			logger.Warn("Failed to revoke session", "uid", id.UID, "error", rerr)
		}
		return nil, ErrSessionTerminated
	}

	profile.IsAdmin = s.admins.IsAdmin(id)
	logger.ExitMethod("accountService.Resolve", "uid", id.UID, "isAdmin", profile.IsAdmin)
	return profile, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.Profile, error) {
	upd.PaymentCustomerID = nil
	trim(upd.FirstName)
	trim(upd.LastName)
	trim(upd.Phone)
	trim(upd.Address)
	if upd.FirstName == nil && upd.LastName == nil && upd.Phone == nil && upd.Address == nil {
		return nil, ErrEmptyProfileUpdate
	}
	if (upd.Phone != nil && *upd.Phone == "") || (upd.Address != nil && *upd.Address == "") {
		return nil, ErrProfileIncomplete
	}

	if _, err := s.Resolve(ctx, id); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Update(ctx, id.UID, upd); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Resolve(ctx, id)
}

func (s *accountService) ListBookings(ctx context.Context, uid string) []domain.Booking {
	bookings, err := s.bookingRepo.ListByUser(ctx, uid)
	if err != nil {
		logger.Warn("Failed to load user bookings", "uid", uid, "error", err)
		return []domain.Booking{}
	}
	if bookings == nil {
		return []domain.Booking{}
	}
	return bookings
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
