package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/service"
)

type CheckoutHandler struct {
	flow             *checkout.Flow
	company          string
	maxDocumentBytes int64
}

func NewCheckoutHandler(flow *checkout.Flow, company string, maxDocumentBytes int64) *CheckoutHandler {
	return &CheckoutHandler{flow: flow, company: company, maxDocumentBytes: maxDocumentBytes}
}

type openRequest struct {
	VehicleID int32          `json:"vehicle_id"`
	Seed      *checkout.Seed `json:"seed,omitempty"`
}

func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.flow.Open(r.Context(), *profile, req.VehicleID, req.Seed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckoutView(sess, h.flow.Policy()))
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	sess, err := h.flow.Get(r.Context(), profile.UID, sessionID(r))
	h.respond(w, r, sess, err)
}

type datesRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *CheckoutHandler) SetDates(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	var req datesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.flow.SetDates(r.Context(), profile.UID, sessionID(r), req.StartDate, req.EndDate)
	h.respond(w, r, sess, err)
}

type deliveryRequest struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

func (h *CheckoutHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	var req deliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.flow.SetDelivery(r.Context(), profile.UID, sessionID(r), req.Enabled, req.Address)
	h.respond(w, r, sess, err)
}

type paymentOptionRequest struct {
	Option domain.PaymentOption `json:"option"`
}

func (h *CheckoutHandler) SetPaymentOption(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	var req paymentOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.flow.SetPaymentOption(r.Context(), *profile, sessionID(r), req.Option)
	h.respond(w, r, sess, err)
}

// AttachDocument reads one multipart "file" field into the draft slot
// named by the route.
func (h *CheckoutHandler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	docType := domain.DocumentType(mux.Vars(r)["type"])
	if !docType.Valid() {
		writeError(w, http.StatusBadRequest, checkout.ErrUnknownDocumentType.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxDocumentBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()
	if header.Size > h.maxDocumentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "document is too large")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read document")
		return
	}

	doc := checkout.Document{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	sess, err := h.flow.AttachDocument(r.Context(), profile.UID, sessionID(r), docType, doc)
	h.respond(w, r, sess, err)
}

func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	sess, err := h.flow.Next(r.Context(), *profile, sessionID(r))
	h.respond(w, r, sess, err)
}

func (h *CheckoutHandler) Previous(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	sess, err := h.flow.Previous(r.Context(), profile.UID, sessionID(r))
	h.respond(w, r, sess, err)
}

type payRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	var req payRequest
	if err := decodeJSON(r, &req); err != nil || req.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, "payment_method is required")
		return
	}
	sess, err := h.flow.Pay(r.Context(), *profile, sessionID(r), req.PaymentMethod)
	h.respond(w, r, sess, err)
}

func (h *CheckoutHandler) Contract(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	sess, err := h.flow.Get(r.Context(), profile.UID, sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	text, err := service.RenderContract(h.company, profile.Renter(), sess.Draft, h.flow.Policy())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	profile, _ := ProfileFromContext(r.Context())
	if err := h.flow.Cancel(r.Context(), profile.UID, sessionID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond writes the session view. A failed transition that still produced
// a session returns the error status with the view, so the client can show
// last_error on the unchanged step.
func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, sess *checkout.Session, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, newCheckoutView(sess, h.flow.Policy()))
		return
	}
	if sess == nil {
		writeServiceError(w, r, err)
		return
	}
	status, msg := classify(err)
	writeJSON(w, status, struct {
		Error   string       `json:"error"`
		Session checkoutView `json:"session"`
	}{Error: msg, Session: newCheckoutView(sess, h.flow.Policy())})
}

func sessionID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
