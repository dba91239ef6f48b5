package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type AdminHandler struct {
	admin service.AdminService
}

func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := service.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := h.admin.ListBookings(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type transitionRequest struct {
	Status domain.BookingStatus `json:"status"`
	// Filter is the list the admin is looking at; the reloaded queue uses it.
	Filter string `json:"filter"`
}

func (h *AdminHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	filter, err := service.ParseStatusFilter(req.Filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items, err := h.admin.Transition(r.Context(), mux.Vars(r)["id"], req.Status, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) VerifyDocuments(w http.ResponseWriter, r *http.Request) {
	v, err := h.admin.VerifyDocuments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verification": v})
}
