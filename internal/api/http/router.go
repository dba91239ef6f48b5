package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"carrental-backend/internal/checkout"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
	"carrental-backend/internal/storage"
)

// Deps is everything the HTTP API is built from. Downloads is nil unless
// documents are kept on local disk.
type Deps struct {
	Catalog          service.CatalogService
	Accounts         service.AccountService
	Admin            service.AdminService
	Flow             *checkout.Flow
	Verifier         security.IdentityVerifier
	Downloads        storage.LocalFileReader
	Company          string
	MaxDocumentBytes int64
	AllowedOrigins   []string
}

// NewRouter registers every route under its name; the name selects the
// security level applied by AuthMiddleware.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)
	router.Use(NewAuthMiddleware(d.Verifier, d.Accounts).Authenticate)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("Health")

	api := router.PathPrefix("/api/v1").Subrouter()

	catalog := NewCatalogHandler(d.Catalog)
	api.HandleFunc("/vehicles", catalog.List).Methods(http.MethodGet).Name("ListVehicles")
	api.HandleFunc("/vehicles/suggest", catalog.Suggest).Methods(http.MethodPost).Name("SuggestVehicle")
	api.HandleFunc("/vehicles/{id:[0-9]+}", catalog.Get).Methods(http.MethodGet).Name("GetVehicle")
	api.HandleFunc("/vehicles/{id:[0-9]+}/quote", catalog.Quote).Methods(http.MethodPost).Name("QuoteVehicle")

	account := NewAccountHandler(d.Accounts)
	api.HandleFunc("/me", account.Get).Methods(http.MethodGet).Name("GetProfile")
	api.HandleFunc("/me", account.Update).Methods(http.MethodPatch).Name("UpdateProfile")
	api.HandleFunc("/me/bookings", account.Bookings).Methods(http.MethodGet).Name("ListMyBookings")

	co := NewCheckoutHandler(d.Flow, d.Company, d.MaxDocumentBytes)
	api.HandleFunc("/checkout", co.Open).Methods(http.MethodPost).Name("OpenCheckout")
	api.HandleFunc("/checkout/{id}", co.Get).Methods(http.MethodGet).Name("GetCheckout")
	api.HandleFunc("/checkout/{id}", co.Cancel).Methods(http.MethodDelete).Name("CancelCheckout")
	api.HandleFunc("/checkout/{id}/dates", co.SetDates).Methods(http.MethodPut).Name("SetCheckoutDates")
	api.HandleFunc("/checkout/{id}/delivery", co.SetDelivery).Methods(http.MethodPut).Name("SetCheckoutDelivery")
	api.HandleFunc("/checkout/{id}/payment-option", co.SetPaymentOption).Methods(http.MethodPut).Name("SetCheckoutPaymentOption")
	api.HandleFunc("/checkout/{id}/documents/{type}", co.AttachDocument).Methods(http.MethodPut).Name("AttachCheckoutDocument")
	api.HandleFunc("/checkout/{id}/next", co.Next).Methods(http.MethodPost).Name("NextCheckoutStep")
	api.HandleFunc("/checkout/{id}/previous", co.Previous).Methods(http.MethodPost).Name("PreviousCheckoutStep")
	api.HandleFunc("/checkout/{id}/pay", co.Pay).Methods(http.MethodPost).Name("PayCheckout")
	api.HandleFunc("/checkout/{id}/contract", co.Contract).Methods(http.MethodGet).Name("GetCheckoutContract")

	admin := NewAdminHandler(d.Admin)
	api.HandleFunc("/admin/bookings", admin.List).Methods(http.MethodGet).Name("AdminListBookings")
	api.HandleFunc("/admin/bookings/{id}/status", admin.Transition).Methods(http.MethodPost).Name("AdminTransition")
	api.HandleFunc("/admin/bookings/{id}/verify", admin.VerifyDocuments).Methods(http.MethodPost).Name("AdminVerifyDocuments")

	if d.Downloads != nil {
		RegisterMockStorageRoutes(api, d.Downloads)
	}
	return router
}

// RegisterMockStorageRoutes registers the mock storage download endpoint
func RegisterMockStorageRoutes(router *mux.Router, files storage.LocalFileReader) {
	handler := NewDownloadHandler(files)
	router.HandleFunc("/download/{key}", handler.HandleDownload).Methods(http.MethodGet).Name("Download")
}

// NewHandler wraps the router with CORS so preflight requests are answered
// before route matching.
func NewHandler(d Deps) http.Handler {
	return CORSMiddleware(d.AllowedOrigins)(NewRouter(d))
}
