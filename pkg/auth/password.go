package auth

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mylawmanager/lawlibrary/pkg/observability"
)

// DefaultCost is the bcrypt work factor used unless configured otherwise.
const DefaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer inputs would be silently
// truncated, so they are rejected instead.
const maxPasswordBytes = 72

// dummySecret is hashed once per Hasher to give Equalize something to
// compare against.
const dummySecret = "lawlibrary-equalize-placeholder"

// Hasher hashes and verifies passwords with bcrypt. It is safe for
// concurrent use.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher creates a Hasher with the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummySecret), cost)
	if err != nil {
		return nil, fmt.Errorf("generating equalization hash: %w", err)
	}

	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt hash of secret. Two calls with the same input
// return different strings.
func (h *Hasher) Hash(secret string) (string, error) {
	if len(secret) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	observability.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches hash. A malformed or empty hash is
// a mismatch.
func (h *Hasher) Verify(secret, hash string) bool {
	if hash == "" || len(secret) > maxPasswordBytes {
		return false
	}

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	observability.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return err == nil
}

// Equalize spends the same work as a real Verify without a stored hash. Login
// calls it for unknown accounts so both failure paths take comparable time.
func (h *Hasher) Equalize(secret string) {
	if len(secret) > maxPasswordBytes {
		secret = secret[:maxPasswordBytes]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(secret))
}
