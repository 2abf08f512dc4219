package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts. The limit is in
// bytes, so multibyte passwords reach it with fewer characters.
const MaxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt. Every hash embeds its own random
// salt, so hashing the same password twice gives two different strings.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}

	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a mismatch.
func (h *BcryptHasher) Verify(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
