package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/internal/storage"
)

func TestDownload(t *testing.T) {
	store, err := storage.NewMockStorageService("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	key := "user-documents/user-1/booking_f1/identity.pdf"
	link, err := store.Upload(context.Background(), key, "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	router := mux.NewRouter()
	RegisterMockStorageRoutes(router.PathPrefix("/api/v1").Subrouter(), store)

	u, err := url.Parse(link)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download/abc?key=missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
