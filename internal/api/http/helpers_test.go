package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

const (
	userToken  = "token-user"
	adminToken = "token-admin"
	newToken   = "token-new"
)

type fakeVerifier map[string]domain.Identity

func (f fakeVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	id, ok := f[token]
	if !ok {
		return domain.Identity{}, security.ErrInvalidToken
	}
	return id, nil
}

func (f fakeVerifier) Revoke(ctx context.Context, uid string) error { return nil }

// fakeAccounts resolves fixed profiles; unknown identities get an
// incomplete profile.
type fakeAccounts struct {
	profiles map[string]*domain.Profile
	bookings []domain.Booking
}

func (f *fakeAccounts) Resolve(ctx context.Context, id domain.Identity) (*domain.Profile, error) {
	if p, ok := f.profiles[id.UID]; ok {
		cp := *p
		return &cp, nil
	}
	return domain.NewProfileFromIdentity(id), nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, id domain.Identity, upd domain.ProfileUpdate) (*domain.Profile, error) {
	p, _ := f.Resolve(ctx, id)
	if upd.Phone != nil {
		if *upd.Phone == "" {
			return nil, service.ErrProfileIncomplete
		}
		p.Phone = *upd.Phone
	}
	if upd.Address != nil {
		p.Address = *upd.Address
	}
	f.profiles[id.UID] = p
	return p, nil
}

func (f *fakeAccounts) ListBookings(ctx context.Context, uid string) []domain.Booking {
	if f.bookings == nil {
		return []domain.Booking{}
	}
	return f.bookings
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListBookings(ctx context.Context, filter service.StatusFilter) ([]service.ReviewItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ReviewItem), args.Error(1)
}

func (m *MockAdminService) Transition(ctx context.Context, id string, to domain.BookingStatus, filter service.StatusFilter) ([]service.ReviewItem, error) {
	args := m.Called(ctx, id, to, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ReviewItem), args.Error(1)
}

func (m *MockAdminService) VerifyDocuments(ctx context.Context, id string) (*advisor.Verification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advisor.Verification), args.Error(1)
}

func (m *MockAdminService) PendingCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type recordingSubmitter struct {
	submissions []checkout.Submission
}

func (s *recordingSubmitter) Submit(ctx context.Context, sub checkout.Submission) (string, error) {
	s.submissions = append(s.submissions, sub)
	return "booking-1", nil
}

type testServer struct {
	handler   http.Handler
	admin     *MockAdminService
	accounts  *fakeAccounts
	submitter *recordingSubmitter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	catalog, err := service.NewCatalogService("", 3000, advisor.Noop{})
	require.NoError(t, err)

	accounts := &fakeAccounts{profiles: map[string]*domain.Profile{
		"user-1": {UID: "user-1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "+33600000000", Address: "1 rue de Paris"},
		"admin":  {UID: "admin", FirstName: "Ada", Email: "admin@example.com", Phone: "+33611111111", Address: "HQ", IsAdmin: true},
	}}
	verifier := fakeVerifier{
		userToken:  {UID: "user-1", Email: "jane@example.com"},
		adminToken: {UID: "admin", Email: "admin@example.com"},
		newToken:   {UID: "user-2", Email: "new@example.com", DisplayName: "New User"},
	}
	gateway := payment.NewMockGateway()
	submitter := &recordingSubmitter{}
	policy := checkout.Policy{DeliveryFeeCents: 3000, DownPaymentCents: 5000, Currency: "eur"}
	flow := checkout.NewFlow(checkout.NewMemoryStore(time.Hour, time.Minute), catalog, gateway, gateway, submitter, policy)
	admin := new(MockAdminService)

	handler := NewHandler(Deps{
		Catalog:          catalog,
		Accounts:         accounts,
		Admin:            admin,
		Flow:             flow,
		Verifier:         verifier,
		Company:          "Location Auto",
		MaxDocumentBytes: 1 << 20,
		AllowedOrigins:   []string{"https://booking.example.com"},
	})
	return &testServer{handler: handler, admin: admin, accounts: accounts, submitter: submitter}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, path, token, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
