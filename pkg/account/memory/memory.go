// Package memory provides an in-memory implementation of account.AdminStore
// for tests and single-process development. Accounts are lost when the
// process restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mylawmanager/lawlibrary/pkg/account"
)

// Store is an in-memory AdminStore. Lookups return copies, so callers
// cannot mutate stored accounts.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*account.Account
	byEmail map[string]string // normalized email -> id
	now     func() time.Time
}

// Ensure Store implements account.AdminStore at compile time.
var _ account.AdminStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*account.Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// Create stores a new account. An empty ID is replaced with a random UUID.
// New accounts are active.
func (s *Store) Create(_ context.Context, acct *account.Account) (*account.Account, error) {
	stored := *acct
	stored.Email = account.NormalizeEmail(stored.Email)
	stored.ApplyDefaults()
	stored.Active = true
	stored.CreatedAt = s.now()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[stored.ID]; exists {
		return nil, account.ErrConflict
	}
	if _, exists := s.byEmail[stored.Email]; exists {
		return nil, account.ErrConflict
	}

	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

// FindActiveByEmail returns the active account with the given email.
func (s *Store) FindActiveByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, account.ErrNotFound
	}
	return s.activeCopy(id)
}

// FindActiveByID returns the active account with the given ID.
func (s *Store) FindActiveByID(_ context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeCopy(id)
}

// activeCopy must be called with s.mu held.
func (s *Store) activeCopy(id string) (*account.Account, error) {
	a, ok := s.byID[id]
	if !ok || !a.Active {
		return nil, account.ErrNotFound
	}
	out := *a
	if a.LastLogin != nil {
		t := *a.LastLogin
		out.LastLogin = &t
	}
	return &out, nil
}

// TouchLastLogin sets the account's last login to now. Unknown IDs are
// ignored, matching an UPDATE that affects no rows.
func (s *Store) TouchLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.byID[id]; ok {
		now := s.now()
		a.LastLogin = &now
	}
	return nil
}

// SetActive flips the active flag.
func (s *Store) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Active = active
	return nil
}

// SetRole changes the account's role.
func (s *Store) SetRole(_ context.Context, id string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Role = role
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}
