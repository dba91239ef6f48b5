package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
)

var adminEmails = []string{"admin@example.com"}

func submission(customerOnProfile string) checkout.Submission {
	docs := checkout.DocumentSet{}
	for _, t := range domain.RequiredDocuments {
		docs[t] = checkout.Document{FileName: string(t) + ".PDF", ContentType: "application/pdf", Data: []byte("%PDF")}
	}
	down := int64(5000)
	return checkout.Submission{
		SessionID: "sess-1",
		Payer: domain.Profile{
			UID:               "user-1",
			FirstName:         "Jane",
			LastName:          "Doe",
			Email:             "jane@example.com",
			Phone:             "+33600000000",
			Address:           "1 rue de Paris",
			PaymentCustomerID: customerOnProfile,
		},
		Draft: checkout.Draft{
			Vehicle:         domain.Vehicle{ID: 1, Name: "CLIO RS Line (2021)"},
			StartDate:       "2025-01-01",
			EndDate:         "2025-01-11",
			Delivery:        true,
			DeliveryAddress: "2 avenue de Lyon",
			PaymentOption:   domain.PaymentOptionDownPayment,
			Documents:       docs,
		},
		Quote:         checkout.Draft{}.Quote(checkout.Policy{}),
		DeliveryFee:   3000,
		DownPayment:   &down,
		TransactionID: "pi_123",
		CustomerID:    "cus_123",
	}
}

func TestDocumentKey(t *testing.T) {
	doc := checkout.Document{FileName: "Scan.JPG", ContentType: "image/jpeg"}
	assert.Equal(t, "user-documents/u1/booking_f1/identity.jpg", DocumentKey("u1", "f1", domain.DocumentIdentity, doc))

	doc = checkout.Document{FileName: "noext", ContentType: "image/png"}
	assert.Equal(t, "user-documents/u1/booking_f1/license_back.png", DocumentKey("u1", "f1", domain.DocumentLicenseBack, doc))
}

func TestBookingSubmitter_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a pending booking and notifies", func(t *testing.T) {
		blobs := newMemoryBlobs()
		bookings := new(MockBookingRepo)
		profiles := new(MockProfileRepo)
		emails := new(MockEmailService)
		pub := &recordingPublisher{}
		sub := NewBookingSubmitter(blobs, bookings, profiles, emails, pub, adminEmails)

		var stored *domain.Booking
		bookings.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.Booking)
			stored.ID = "bk-1"
		}).Return(nil)
		customer := "cus_123"
		profiles.On("Update", ctx, "user-1", domain.ProfileUpdate{PaymentCustomerID: &customer}).Return(nil)
		emails.On("SendBookingReceived", ctx, mock.Anything).Return(nil)
		emails.On("SendNewBookingAlert", ctx, adminEmails, mock.Anything).Return(nil)

		id, err := sub.Submit(ctx, submission(""))
		require.NoError(t, err)
		assert.Equal(t, "bk-1", id)

		require.NotNil(t, stored)
		assert.Equal(t, domain.BookingStatusPending, stored.Status)
		assert.Equal(t, "Jane", stored.Renter.FirstName)
		assert.Equal(t, int64(3000), stored.Delivery.FeeCents)
		assert.Equal(t, "2 avenue de Lyon", stored.Delivery.Address)
		require.NotNil(t, stored.DownPaymentCents)
		assert.Equal(t, int64(5000), *stored.DownPaymentCents)
		assert.Equal(t, "pi_123", stored.PaymentTransactionID)

		assert.Len(t, blobs.objects, 4)
		for _, url := range []string{stored.Documents.LicenseFront, stored.Documents.LicenseBack, stored.Documents.Identity, stored.Documents.ProofOfAddress} {
			assert.True(t, strings.HasPrefix(url, "mem://user-documents/user-1/booking_"), url)
			assert.True(t, strings.HasSuffix(url, ".pdf"), url)
		}

		require.Len(t, pub.events, 1)
		assert.Equal(t, events.TypeBookingCreated, pub.events[0].Type)
		bookings.AssertExpectations(t)
		profiles.AssertExpectations(t)
		emails.AssertExpectations(t)
	})

	t.Run("existing customer id is not overwritten", func(t *testing.T) {
		bookings := new(MockBookingRepo)
		profiles := new(MockProfileRepo)
		emails := new(MockEmailService)
		sub := NewBookingSubmitter(newMemoryBlobs(), bookings, profiles, emails, events.NoopPublisher{}, nil)

		bookings.On("Create", ctx, mock.Anything).Return(nil)
		emails.On("SendBookingReceived", ctx, mock.Anything).Return(nil)

		_, err := sub.Submit(ctx, submission("cus_old"))
		require.NoError(t, err)
		profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		emails.AssertNotCalled(t, "SendNewBookingAlert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("upload failure stores nothing", func(t *testing.T) {
		blobs := newMemoryBlobs()
		blobs.failOn = "identity.pdf"
		bookings := new(MockBookingRepo)
		sub := NewBookingSubmitter(blobs, bookings, new(MockProfileRepo), new(MockEmailService), events.NoopPublisher{}, adminEmails)

		_, err := sub.Submit(ctx, submission(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "identity")
		bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		bookings := new(MockBookingRepo)
		emails := new(MockEmailService)
		sub := NewBookingSubmitter(newMemoryBlobs(), bookings, new(MockProfileRepo), emails, events.NoopPublisher{}, adminEmails)
		bookings.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := sub.Submit(ctx, submission(""))
		assert.Error(t, err)
		emails.AssertNotCalled(t, "SendBookingReceived", mock.Anything, mock.Anything)
	})

	t.Run("notification failures are not fatal", func(t *testing.T) {
		bookings := new(MockBookingRepo)
		profiles := new(MockProfileRepo)
		emails := new(MockEmailService)
		sub := NewBookingSubmitter(newMemoryBlobs(), bookings, profiles, emails, &recordingPublisher{err: errors.New("broker")}, adminEmails)

		bookings.On("Create", ctx, mock.Anything).Return(nil)
		profiles.On("Update", ctx, "user-1", mock.Anything).Return(errors.New("db down"))
		emails.On("SendBookingReceived", ctx, mock.Anything).Return(errors.New("sendgrid"))
		emails.On("SendNewBookingAlert", ctx, adminEmails, mock.Anything).Return(errors.New("sendgrid"))

		_, err := sub.Submit(ctx, submission(""))
		assert.NoError(t, err)
	})

	t.Run("incomplete documents", func(t *testing.T) {
		bookings := new(MockBookingRepo)
		sub := NewBookingSubmitter(newMemoryBlobs(), bookings, new(MockProfileRepo), new(MockEmailService), events.NoopPublisher{}, nil)
		s := submission("")
		delete(s.Draft.Documents, domain.DocumentProofOfAddress)

		_, err := sub.Submit(ctx, s)
		var ve *checkout.ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}
