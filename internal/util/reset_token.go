package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ResetTokenBytes is the size of a password reset secret (256 bits).
const ResetTokenBytes = 32

// GenerateResetToken returns a hex encoded random secret for password recovery.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashResetToken computes the SHA-256 digest stored in place of the secret.
// A fast hash is enough since the secret carries the entropy.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
