package firestore

import (
	"cloud.google.com/go/firestore"

	"carrental-backend/internal/repository"
)

type Store struct {
	repository.BookingRepository
	repository.ProfileRepository
}

func NewStore(client *firestore.Client) *Store {
	return &Store{
		BookingRepository: NewBookingRepository(client),
		ProfileRepository: NewProfileRepository(client),
	}
}
