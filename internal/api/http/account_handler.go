package http

import (
	"net/http"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

type AccountHandler struct {
	accounts service.AccountService
}

func NewAccountHandler(accounts service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	writeJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := security.IdentityFromContext(r.Context())
	var upd domain.ProfileUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	profile, err := h.accounts.UpdateProfile(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.accounts.ListBookings(r.Context(), profile.UID))
}
