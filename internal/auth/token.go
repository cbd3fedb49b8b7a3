package auth

import (
	"fmt"
	"time"

	"github.com/acarrillo/tasknest/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager handles session token generation and validation. Tokens are
// stateless: validity is re-derived from the signature and expiry on every
// use, nothing is stored server-side.
type TokenManager struct {
	secret             string
	sessionTokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager. The secret is process-wide;
// rotating it invalidates every outstanding session token.
func NewTokenManager(secret string, sessionExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:             secret,
		sessionTokenExpiry: sessionExpiry,
	}
}

// SessionTokenExpiry reports the configured token lifetime so callers can
// keep cookie max age in sync with it.
func (tm *TokenManager) SessionTokenExpiry() time.Duration {
	return tm.sessionTokenExpiry
}

// GenerateSessionToken creates a signed session token bound to the user.
func (tm *TokenManager) GenerateSessionToken(userID, email string) (string, error) {
	now := time.Now()

	claims := &models.SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.sessionTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a token's signature and expiry and returns its
// claims. Malformed, tampered and expired tokens all come back as errors;
// callers are expected to collapse them into a single unauthorized outcome.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return claims, nil
}
