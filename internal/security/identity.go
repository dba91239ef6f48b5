package security

import (
	"context"
	"strings"

	"carrental-backend/internal/domain"
)

// IdentityVerifier resolves a bearer token to the caller's identity and can
// terminate all sessions of a user.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
	Revoke(ctx context.Context, uid string) error
}

// AdminPolicy decides who may use the admin review queue.
type AdminPolicy interface {
	IsAdmin(id domain.Identity) bool
}

// EmailAllowList grants admin rights to a fixed set of email addresses.
type EmailAllowList struct {
	emails map[string]struct{}
}

func NewEmailAllowList(emails []string) *EmailAllowList {
	l := &EmailAllowList{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			l.emails[e] = struct{}{}
		}
	}
	return l
}

func (l *EmailAllowList) IsAdmin(id domain.Identity) bool {
	_, ok := l.emails[normalizeEmail(id.Email)]
	return ok && id.Email != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BearerToken strips an optional "Bearer " prefix from an Authorization value.
func BearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
