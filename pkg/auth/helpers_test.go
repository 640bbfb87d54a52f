package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/account/memory"
	"github.com/mylawmanager/lawlibrary/pkg/auth/jwt"
)

var testSecret = []byte("test-signing-secret-0123456789abcdef")

// fakeClock is a settable time source for the token issuer.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func newTestIssuer(t *testing.T, clock *fakeClock) *jwt.Issuer {
	t.Helper()
	iss, err := jwt.New(jwt.Config{Secret: testSecret, Now: clock.Now})
	if err != nil {
		t.Fatalf("jwt.New: %v", err)
	}
	return iss
}

// seedAccount creates an active account with the given password.
func seedAccount(t *testing.T, store *memory.Store, h *Hasher, email, password string) *account.Account {
	t.Helper()
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	acct, err := store.Create(context.Background(), &account.Account{
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return acct
}

// stubStore is an account.Store with scripted results.
type stubStore struct {
	acct     *account.Account
	findErr  error
	touchErr error

	findCalls  int
	touchCalls int
}

func (s *stubStore) FindActiveByEmail(context.Context, string) (*account.Account, error) {
	s.findCalls++
	return s.acct, s.findErr
}

func (s *stubStore) FindActiveByID(context.Context, string) (*account.Account, error) {
	s.findCalls++
	return s.acct, s.findErr
}

func (s *stubStore) TouchLastLogin(context.Context, string) error {
	s.touchCalls++
	return s.touchErr
}
