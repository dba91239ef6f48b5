package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type profileRepository struct {
	client *firestore.Client
}

func NewProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	snap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec profileRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	return rec.toDomain(uid), nil
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.client.Collection(usersCollection).Doc(p.UID).Set(ctx, toProfileRecord(p))
	return err
}

func (r *profileRepository) Update(ctx context.Context, uid string, upd domain.ProfileUpdate) error {
	updates := profileUpdates(upd)
	if len(updates) == 0 {
		return nil
	}
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	return err
}

func profileUpdates(upd domain.ProfileUpdate) []firestore.Update {
	var updates []firestore.Update
	add := func(path string, v *string) {
		if v != nil {
			updates = append(updates, firestore.Update{Path: path, Value: *v})
		}
	}
	add("firstName", upd.FirstName)
	add("lastName", upd.LastName)
	add("phone", upd.Phone)
	add("address", upd.Address)
	add("stripeCustomerId", upd.PaymentCustomerID)
	return updates
}
