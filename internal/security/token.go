package security

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carrental-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevoked      = errors.New("session has been revoked")
)

const (
	tokenIssuer   = "carrental-backend"
	tokenAudience = "carrental-api"
)

// UserClaims carries the identity of a locally issued access token.
type UserClaims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	Phone       string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

func (c *UserClaims) Identity() domain.Identity {
	return domain.Identity{UID: c.Subject, Email: c.Email, DisplayName: c.DisplayName, Phone: c.Phone}
}

type TokenManager interface {
	GenerateAccessToken(id domain.Identity) (string, error)
	ValidateToken(tokenString string) (*UserClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *tokenManager) GenerateAccessToken(id domain.Identity) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Phone:       id.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ID:        generateJTI(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithAudience(tokenAudience), jwt.WithIssuer(tokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// JWTVerifier verifies locally issued tokens. Revoke rejects every token of
// the user issued up to that moment, which is how a sign-out is enforced.
type JWTVerifier struct {
	tokens  TokenManager
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewJWTVerifier(tokens TokenManager) *JWTVerifier {
	return &JWTVerifier{tokens: tokens, revoked: make(map[string]time.Time)}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		return domain.Identity{}, err
	}
	v.mu.RLock()
	revokedAt, ok := v.revoked[claims.Subject]
	v.mu.RUnlock()
	if ok && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(revokedAt) {
		return domain.Identity{}, ErrRevoked
	}
	return claims.Identity(), nil
}

func (v *JWTVerifier) Revoke(ctx context.Context, uid string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revoked[uid] = time.Now()
	return nil
}

// Simple unique ID generator
func generateJTI() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
