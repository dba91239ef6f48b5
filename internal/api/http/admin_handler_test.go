package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

func pendingItem(id string) service.ReviewItem {
	return service.ReviewItem{
		Booking:     domain.Booking{ID: id, Status: domain.BookingStatusPending},
		Transitions: service.AllowedTransitions(domain.BookingStatusPending),
	}
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/admin/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/bookings", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	s.admin.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
}

func TestAdmin_List(t *testing.T) {
	s := newTestServer(t)
	s.admin.On("ListBookings", mock.Anything, service.StatusFilter("pending")).Return([]service.ReviewItem{pendingItem("b1")}, nil)
	s.admin.On("ListBookings", mock.Anything, service.FilterAll).Return([]service.ReviewItem{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/admin/bookings", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]service.ReviewItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0].ID)
	assert.Len(t, items[0].Transitions, 2)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/bookings?status=all", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/admin/bookings?status=archived", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_Transition(t *testing.T) {
	s := newTestServer(t)
	s.admin.On("Transition", mock.Anything, "b1", domain.BookingStatusConfirmed, service.StatusFilter("pending")).
		Return([]service.ReviewItem{}, nil)
	s.admin.On("Transition", mock.Anything, "b2", domain.BookingStatusConfirmed, service.FilterAll).
		Return(nil, service.ErrInvalidTransition)
	s.admin.On("Transition", mock.Anything, "nope", domain.BookingStatusRejected, service.StatusFilter("pending")).
		Return(nil, service.ErrBookingNotFound)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/bookings/b1/status", adminToken, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/admin/bookings/b2/status", adminToken, map[string]any{"status": "confirmed", "filter": "all"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/bookings/nope/status", adminToken, map[string]any{"status": "rejected"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.admin.AssertExpectations(t)
}

func TestAdmin_VerifyDocuments(t *testing.T) {
	s := newTestServer(t)
	s.admin.On("VerifyDocuments", mock.Anything, "b1").Return(&advisor.Verification{NameMatch: true, AddressMatch: true, Summary: "ok"}, nil)
	s.admin.On("VerifyDocuments", mock.Anything, "b2").Return(nil, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/bookings/b1/verify", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summary":"ok"`)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/bookings/b2/verify", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"verification": null}`, rec.Body.String())
}
