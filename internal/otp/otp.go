// Package otp generates the one-time codes used for email verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// TTL is how long a verification code stays valid after issuance.
const TTL = time.Hour

// Generate returns a random 6-digit numeric code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Expiry returns the expiration instant for a code issued now.
func Expiry() time.Time {
	return time.Now().Add(TTL)
}
