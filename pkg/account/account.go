package account

import (
	"context"
	"strings"
	"time"

	"github.com/mylawmanager/lawlibrary/pkg/api"
)

// Default attribute values for newly created accounts.
const (
	DefaultRole               = "user"
	DefaultSubscriptionTier   = "free"
	DefaultSubscriptionStatus = "active"
)

// Account is a registered user.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`

	// PasswordHash is the bcrypt hash of the password. It is never serialized.
	PasswordHash string `json:"-"`

	Role               string `json:"role"`
	SubscriptionTier   string `json:"subscription_tier"`
	SubscriptionStatus string `json:"subscription_status"`

	// Active is false once the account has been suspended or soft-deleted.
	Active bool `json:"active"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Summary returns the redacted view handed back to clients.
func (a *Account) Summary() api.UserSummary {
	return api.UserSummary{
		ID:                 a.ID,
		Email:              a.Email,
		Name:               a.Name,
		Role:               a.Role,
		SubscriptionTier:   a.SubscriptionTier,
		SubscriptionStatus: a.SubscriptionStatus,
	}
}

// ApplyDefaults fills empty authorization attributes with their defaults.
func (a *Account) ApplyDefaults() {
	if a.Role == "" {
		a.Role = DefaultRole
	}
	if a.SubscriptionTier == "" {
		a.SubscriptionTier = DefaultSubscriptionTier
	}
	if a.SubscriptionStatus == "" {
		a.SubscriptionStatus = DefaultSubscriptionStatus
	}
}

// NormalizeEmail case-folds an email address for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Store is the account lookup contract used by the authenticators.
// Implementations must use parameterized queries and honor ctx cancellation.
type Store interface {
	// FindActiveByEmail returns the active account with the given normalized
	// email, or ErrNotFound.
	FindActiveByEmail(ctx context.Context, email string) (*Account, error)

	// FindActiveByID returns the active account with the given ID, or ErrNotFound.
	FindActiveByID(ctx context.Context, id string) (*Account, error)

	// TouchLastLogin records the current time as the account's last login.
	TouchLastLogin(ctx context.Context, id string) error
}

// AdminStore extends Store with the lifecycle operations used by operators.
// These are not reachable from the public API.
type AdminStore interface {
	Store

	// Create inserts a new account. The email is normalized and the
	// attribute defaults applied. Returns ErrConflict on a duplicate email.
	Create(ctx context.Context, acct *Account) (*Account, error)

	// SetActive flips the active flag. Returns ErrNotFound for unknown IDs.
	SetActive(ctx context.Context, id string, active bool) error

	// SetRole changes the account's role. Returns ErrNotFound for unknown IDs.
	SetRole(ctx context.Context, id string, role string) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close()
}
