package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
	"carrental-backend/internal/service"
)

type CatalogHandler struct {
	catalog service.CatalogService
	now     func() time.Time
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, now: time.Now}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.List())
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}
	v, found := h.catalog.Vehicle(id)
	if !found {
		writeError(w, http.StatusNotFound, service.ErrVehicleNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type quoteRequest struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Formula   domain.PricingFormula `json:"formula"`
	Delivery  bool                  `json:"delivery"`
}

type quoteResponse struct {
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Quote     pricing.Quote `json:"quote"`
}

// Quote prices a range for the vehicle page. A formula preset replaces
// the explicit dates.
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(w, r)
	if !ok {
		return
	}
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Formula != "" {
		start, end, err := pricing.FormulaRange(req.Formula, h.now())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.StartDate, req.EndDate = start, end
	}

	q, err := h.catalog.Quote(id, req.StartDate, req.EndDate, req.Delivery)
	if err != nil {
		status, msg := classify(err)
		if status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, err.Error()
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{StartDate: req.StartDate, EndDate: req.EndDate, Quote: q})
}

type suggestRequest struct {
	Trip string `json:"trip"`
}

// Suggest answers {"suggestion": null} when the advisor is off or fails.
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Trip) == "" {
		writeError(w, http.StatusBadRequest, "trip description is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestion": h.catalog.Suggest(r.Context(), req.Trip)})
}

func vehicleID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vehicle id")
		return 0, false
	}
	return int32(id), true
}
