package service

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockBookingRepo) CountByStatus(ctx context.Context, status domain.BookingStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepo) Update(ctx context.Context, uid string, upd domain.ProfileUpdate) error {
	args := m.Called(ctx, uid, upd)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingReceived(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockEmailService) SendNewBookingAlert(ctx context.Context, to []string, b *domain.Booking) error {
	args := m.Called(ctx, to, b)
	return args.Error(0)
}

func (m *MockEmailService) SendStatusChanged(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockEmailService) SendPendingDigest(ctx context.Context, to []string, pending int) error {
	args := m.Called(ctx, to, pending)
	return args.Error(0)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.Identity), args.Error(1)
}

func (m *MockIdentityVerifier) Revoke(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

type MockAdvisor struct {
	mock.Mock
}

func (m *MockAdvisor) SuggestVehicle(ctx context.Context, tripDescription string, vehicles []domain.Vehicle) *advisor.Suggestion {
	args := m.Called(ctx, tripDescription, vehicles)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*advisor.Suggestion)
}

func (m *MockAdvisor) VerifyDocuments(ctx context.Context, b *domain.Booking) *advisor.Verification {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*advisor.Verification)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// memoryBlobs is an in-memory blob store that can fail for one key suffix.
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: map[string][]byte{}}
}

func (b *memoryBlobs) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if b.failOn != "" && strings.HasSuffix(key, b.failOn) {
		return "", context.DeadlineExceeded
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return "mem://" + key, nil
}

func (b *memoryBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

type allowAll bool

func (a allowAll) IsAdmin(id domain.Identity) bool { return bool(a) }
