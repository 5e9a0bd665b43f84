package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateResetToken returns a random hex token for password resets together
// with the sha256 digest that is persisted in its place.
func GenerateResetToken() (token string, digest string, err error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	return token, HashToken(token), nil
}

// HashToken returns the hex sha256 digest of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
