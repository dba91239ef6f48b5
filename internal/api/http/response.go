package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps a service or checkout error to its status code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	var ve *checkout.ValidationError
	var ce *checkout.CollaboratorError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &ce):
		return http.StatusBadGateway, ce.Message
	case errors.Is(err, checkout.ErrSessionNotFound),
		errors.Is(err, checkout.ErrVehicleNotFound),
		errors.Is(err, service.ErrVehicleNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, checkout.ErrBusy),
		errors.Is(err, checkout.ErrWrongStep),
		errors.Is(err, checkout.ErrAlreadyPaid),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, checkout.ErrProfileIncomplete),
		errors.Is(err, checkout.ErrUnknownDocumentType),
		errors.Is(err, checkout.ErrUnsupportedDocumentMIME),
		errors.Is(err, checkout.ErrEmptyDocument),
		errors.Is(err, service.ErrProfileIncomplete),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyProfileUpdate):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrSessionTerminated),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrRevoked):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
