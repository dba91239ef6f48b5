package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

type profileKey struct{}

// ProfileFromContext returns the resolved profile of the caller.
func ProfileFromContext(ctx context.Context) (*domain.Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(*domain.Profile)
	return p, ok
}

// AuthMiddleware verifies the bearer token and resolves the caller's
// profile for every route that is not public.
type AuthMiddleware struct {
	verifier security.IdentityVerifier
	accounts service.AccountService
}

func NewAuthMiddleware(verifier security.IdentityVerifier, accounts service.AccountService) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, accounts: accounts}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.SecurityUser
		if route := mux.CurrentRoute(r); route != nil {
			level = config.GetSecurityLevel(route.GetName())
		}
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := security.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authorization token is not provided")
			return
		}
		id, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			logger.Debug("Token rejected", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		profile, err := m.accounts.Resolve(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if level == config.SecurityAdmin && !profile.IsAdmin {
			writeError(w, http.StatusForbidden, service.ErrForbidden.Error())
			return
		}

		ctx := security.WithIdentity(r.Context(), id)
		ctx = context.WithValue(ctx, profileKey{}, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// CORSMiddleware allows the booking site origins to call the API.
func CORSMiddleware(origins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (slices.Contains(origins, "*") || slices.Contains(origins, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
