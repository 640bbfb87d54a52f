// Package postgres provides a PostgreSQL implementation of account.AdminStore.
// It runs parameterized queries against the users table over an injected
// pgx/v5 connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/debug"
	"github.com/mylawmanager/lawlibrary/pkg/observability"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const selectColumns = `id, email, name, password_hash, role,
	subscription_tier, subscription_status, active, last_login, created_at`

// Store is a PostgreSQL-backed AdminStore.
type Store struct {
	pool  *pgxpool.Pool
	owned bool
}

// Ensure Store implements account.AdminStore at compile time.
var _ account.AdminStore = (*Store)(nil)

// New creates a store over an existing pool. The caller keeps ownership of
// the pool; Close does not close it.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open creates a pool from cfg, optionally migrates, and returns a store that
// owns the pool.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	debug.Log("storage", "postgres pool opened",
		"max_conns", cfg.MaxConns,
		"migrate_on_start", cfg.MigrateOnStart,
	)
	return &Store{pool: pool, owned: true}, nil
}

// FindActiveByEmail returns the active account with the given email.
func (s *Store) FindActiveByEmail(ctx context.Context, email string) (*account.Account, error) {
	defer observe("find_by_email", time.Now())

	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM users WHERE email = $1 AND active = true`,
		email,
	)
	return scanAccount(row)
}

// FindActiveByID returns the active account with the given ID.
func (s *Store) FindActiveByID(ctx context.Context, id string) (*account.Account, error) {
	defer observe("find_by_id", time.Now())

	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM users WHERE id = $1 AND active = true`,
		id,
	)
	return scanAccount(row)
}

// TouchLastLogin sets last_login to the database's current time.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	defer observe("touch_last_login", time.Now())

	if _, err := s.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// Create inserts a new active account. An empty ID lets the database
// generate one.
func (s *Store) Create(ctx context.Context, acct *account.Account) (*account.Account, error) {
	defer observe("create", time.Now())

	in := *acct
	in.Email = account.NormalizeEmail(in.Email)
	in.ApplyDefaults()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, role, subscription_tier, subscription_status)
		VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7)
		RETURNING `+selectColumns,
		in.ID, in.Email, in.Name, in.PasswordHash, in.Role, in.SubscriptionTier, in.SubscriptionStatus,
	)

	out, err := scanAccount(row)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, account.ErrConflict
		}
		return nil, fmt.Errorf("inserting account: %w", err)
	}
	return out, nil
}

// SetActive flips the active flag.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	defer observe("set_active", time.Now())

	return s.update(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active)
}

// SetRole changes the account's role.
func (s *Store) SetRole(ctx context.Context, id string, role string) error {
	defer observe("set_role", time.Now())

	return s.update(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
}

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool if the store opened it.
func (s *Store) Close() {
	if s.owned {
		s.pool.Close()
	}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var a account.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role,
		&a.SubscriptionTier, &a.SubscriptionStatus, &a.Active, &a.LastLogin, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}
	return &a, nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func observe(op string, start time.Time) {
	observability.StoreQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
