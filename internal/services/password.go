package services

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt cost used for new hashes.
const DefaultPasswordCost = 10

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify returns false without error on a mismatch. An error means the
	// stored hash could not be used at all.
	Verify(plain, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt. Verification honours
// whatever cost is embedded in the stored hash.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a hasher using DefaultPasswordCost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: DefaultPasswordCost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultPasswordCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
}

var (
	missHashOnce sync.Once
	missHash     string
)

// unknownAccountHash is a fixed hash at DefaultPasswordCost. Login compares
// against it when the email is unknown so both failure paths cost one bcrypt
// comparison.
func unknownAccountHash() string {
	missHashOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("pustaka-unknown-account"), DefaultPasswordCost)
		if err == nil {
			missHash = string(hashed)
		}
	})
	return missHash
}
