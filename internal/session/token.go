package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jon4hz/whispr/internal/config"
)

// ErrTokenInvalid is returned for a malformed, tampered or expired token.
// Callers use it to distinguish a corrupt session from an absent one.
var ErrTokenInvalid = errors.New("session: invalid token")

// Payload carries the identity asserted by a session token.
type Payload struct {
	UserID             string    `json:"id"`
	Username           string    `json:"userName"`
	IsVerified         bool      `json:"isVerified"`
	IsAcceptingMessage bool      `json:"isAcceptingMessage"`
	ExpiresAt          time.Time `json:"expires"`
}

type claims struct {
	jwt.RegisteredClaims
	Username           string `json:"userName"`
	IsVerified         bool   `json:"isVerified"`
	IsAcceptingMessage bool   `json:"isAcceptingMessage"`
}

// TokenManager signs and verifies self-issued session tokens.
type TokenManager struct {
	secret   []byte
	validity time.Duration
}

// NewTokenManager creates a token manager from the auth config.
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		validity: cfg.TokenValidity,
	}
}

// Encode mints a signed token for the given identity. The expiry lives in the
// registered ExpiresAt claim only, there is no second expiry field to drift.
func (t *TokenManager) Encode(userID, username string, isVerified, isAcceptingMessage bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.validity)),
		},
		Username:           username,
		IsVerified:         isVerified,
		IsAcceptingMessage: isAcceptingMessage,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies a token and returns its payload. An empty token yields
// (nil, nil), any verification failure yields ErrTokenInvalid.
func (t *TokenManager) Decode(tokenString string) (*Payload, error) {
	if tokenString == "" {
		return nil, nil
	}

	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &Payload{
		UserID:             c.Subject,
		Username:           c.Username,
		IsVerified:         c.IsVerified,
		IsAcceptingMessage: c.IsAcceptingMessage,
		ExpiresAt:          c.ExpiresAt.Time,
	}, nil
}
