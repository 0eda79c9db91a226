package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const deviceTokenBytes = 32

var ErrInvalidToken = errors.New("invalid token")

// GenerateDeviceToken creates a cryptographically secure random token. The
// plaintext is shown to the operator once; only its hash is stored.
func GenerateDeviceToken() (string, error) {
	bytes := make([]byte, deviceTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// HashDeviceToken creates a bcrypt hash of the token.
func HashDeviceToken(token string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckDeviceToken compares a token with its hash.
func CheckDeviceToken(token, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}
