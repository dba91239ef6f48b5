package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/storage"
)

var contentTypeExt = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// DocumentKey is the storage key of one uploaded booking document.
func DocumentKey(uid, bookingFolder string, docType domain.DocumentType, doc checkout.Document) string {
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext == "" {
		ext = contentTypeExt[doc.ContentType]
	}
	return fmt.Sprintf("user-documents/%s/booking_%s/%s%s", uid, bookingFolder, docType, ext)
}

type bookingSubmitter struct {
	blobs       storage.BlobStore
	bookingRepo repository.BookingRepository
	profileRepo repository.ProfileRepository
	emailSvc    EmailService
	publisher   events.Publisher
	adminEmails []string
}

// NewBookingSubmitter persists paid checkouts: it uploads the documents,
// stores a pending booking and notifies the renter and the admins.
func NewBookingSubmitter(
	blobs storage.BlobStore,
	bookingRepo repository.BookingRepository,
	profileRepo repository.ProfileRepository,
	emailSvc EmailService,
	publisher events.Publisher,
	adminEmails []string,
) checkout.Submitter {
	return &bookingSubmitter{
		blobs:       blobs,
		bookingRepo: bookingRepo,
		profileRepo: profileRepo,
		emailSvc:    emailSvc,
		publisher:   publisher,
		adminEmails: adminEmails,
	}
}

func (s *bookingSubmitter) Submit(ctx context.Context, sub checkout.Submission) (string, error) {
	logger.EnterMethod("bookingSubmitter.Submit", "sessionID", sub.SessionID, "userID", sub.Payer.UID)

	docs, err := s.upload(ctx, sub)
	if err != nil {
		logger.ExitMethodWithError("bookingSubmitter.Submit", err, "sessionID", sub.SessionID)
		return "", err
	}

	b := &domain.Booking{
		UserID:          sub.Payer.UID,
		Vehicle:         sub.Draft.Vehicle,
		Renter:          sub.Payer.Renter(),
		StartDate:       sub.Draft.StartDate,
		EndDate:         sub.Draft.EndDate,
		DurationDays:    sub.Quote.DurationDays,
		TotalPriceCents: sub.Quote.TotalPriceCents,
		IncludedKm:      sub.Quote.IncludedKm,
		Delivery: domain.Delivery{
			Enabled:  sub.Draft.Delivery,
			Address:  sub.Draft.DeliveryAddress,
			FeeCents: sub.DeliveryFee,
		},
		Documents:            docs,
		Status:               domain.BookingStatusPending,
		PaymentOption:        sub.Draft.PaymentOption,
		DownPaymentCents:     sub.DownPayment,
		PaymentTransactionID: sub.TransactionID,
		PaymentCustomerID:    sub.CustomerID,
	}
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		logger.Error("Booking could not be stored after upload", "sessionID", sub.SessionID, "error", err)
		return "", fmt.Errorf("failed to store booking: %w", err)
	}

	if sub.Payer.PaymentCustomerID == "" {
		customerID := sub.CustomerID
		if err := s.profileRepo.Update(ctx, sub.Payer.UID, domain.ProfileUpdate{PaymentCustomerID: &customerID}); err != nil {
			logger.Warn("Failed to save payment customer on profile", "userID", sub.Payer.UID, "error", err)
		}
	}

	s.notify(ctx, b)

	logger.ExitMethod("bookingSubmitter.Submit", "bookingID", b.ID)
	return b.ID, nil
}

// upload stores the four documents concurrently. Keys already written when
// one upload fails are logged, not removed.
func (s *bookingSubmitter) upload(ctx context.Context, sub checkout.Submission) (domain.BookingDocuments, error) {
	folder := uuid.NewString()
	var (
		mu       sync.Mutex
		docs     domain.BookingDocuments
		uploaded []string
	)

	if !sub.Draft.Documents.Complete() {
		return docs, &checkout.ValidationError{Step: checkout.StepPayment, Message: "all four documents are required"}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, docType := range domain.RequiredDocuments {
		doc := sub.Draft.Documents[docType]
		g.Go(func() error {
			key := DocumentKey(sub.Payer.UID, folder, docType, doc)
			url, err := s.blobs.Upload(gctx, key, doc.ContentType, doc.Data)
			if err != nil {
				return fmt.Errorf("upload %s: %w", docType, err)
			}
			mu.Lock()
			docs.Set(docType, url)
			uploaded = append(uploaded, key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if len(uploaded) > 0 {
			logger.Warn("Orphaned document uploads", "sessionID", sub.SessionID, "keys", uploaded)
		}
		return docs, fmt.Errorf("failed to upload documents: %w", err)
	}
	return docs, nil
}

func (s *bookingSubmitter) notify(ctx context.Context, b *domain.Booking) {
	if err := s.emailSvc.SendBookingReceived(ctx, b); err != nil {
		logger.Warn("Failed to send booking confirmation email", "bookingID", b.ID, "error", err)
	}
	if len(s.adminEmails) > 0 {
		if err := s.emailSvc.SendNewBookingAlert(ctx, s.adminEmails, b); err != nil {
			logger.Warn("Failed to send admin booking alert", "bookingID", b.ID, "error", err)
		}
	}
	if err := s.publisher.Publish(ctx, events.NewBookingCreated(b)); err != nil {
		logger.Warn("Failed to publish booking event", "bookingID", b.ID, "error", err)
	}
}
