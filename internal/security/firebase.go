package security

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

type firebaseAuth interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseVerifier checks Firebase ID tokens issued to the web client.
type FirebaseVerifier struct {
	client firebaseAuth
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (domain.Identity, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		switch {
		case auth.IsIDTokenRevoked(err):
			return domain.Identity{}, ErrRevoked
		case auth.IsIDTokenExpired(err):
			return domain.Identity{}, ErrExpiredToken
		}
		logger.Debug("Firebase ID token rejected", "error", err)
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{
		UID:         token.UID,
		Email:       claimString(token.Claims, "email"),
		DisplayName: claimString(token.Claims, "name"),
		Phone:       claimString(token.Claims, "phone_number"),
	}, nil
}

// Revoke invalidates the user's refresh tokens, signing them out everywhere.
func (v *FirebaseVerifier) Revoke(ctx context.Context, uid string) error {
	logger.ExternalServiceCall("firebase-auth", "RevokeRefreshTokens", "uid", uid)
	err := v.client.RevokeRefreshTokens(ctx, uid)
	logger.ExternalServiceResult("firebase-auth", "RevokeRefreshTokens", err, "uid", uid)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions of %s: %w", uid, err)
	}
	return nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
