// Package jwt issues and verifies the signed identity assertions handed to
// clients at login.
//
// Tokens are HS256-signed JWTs carrying a snapshot of the account's identity
// and authorization attributes at issuance time. They are self-contained and
// never stored server-side; they stop working when they expire or when the
// signing secret changes. Verification failures are deliberately uniform:
// callers only ever see ErrInvalidToken.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/mylawmanager/lawlibrary/pkg/account"
)

// DefaultIssuer is the iss claim stamped on every token.
const DefaultIssuer = "mylawmanager-api"

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

var (
	// ErrInvalidToken is returned for any malformed, expired, mis-signed or
	// otherwise unacceptable token. The cause is intentionally not exposed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret is returned by New when no signing secret is configured.
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

// Config holds the issuer configuration.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte

	// Issuer is the iss claim to stamp and require. Default: DefaultIssuer.
	Issuer string

	// TTL is the token lifetime. Default: DefaultTTL.
	TTL time.Duration

	// Now returns the current time. Default: time.Now. Tests override it to
	// move the clock.
	Now func() time.Time
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Claims is the token payload: the standard registered claims plus a
// snapshot of the account attributes taken at issuance.
type Claims struct {
	jwtlib.RegisteredClaims

	UserID             string `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	SubscriptionTier   string `json:"subscription_tier"`
	SubscriptionStatus string `json:"subscription_status"`
}

// Issuer creates and validates tokens with a process-wide secret.
// It is safe for concurrent use.
type Issuer struct {
	config Config
}

// New creates an Issuer. It refuses to start without a secret; there is no
// fallback key.
func New(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	cfg.applyDefaults()
	return &Issuer{config: cfg}, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.config.TTL
}

// Issue signs a token for the given account.
func (i *Issuer) Issue(acct *account.Account) (string, error) {
	now := i.config.Now()

	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   acct.ID,
			Issuer:    i.config.Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.config.TTL)),
		},
		UserID:             acct.ID,
		Email:              acct.Email,
		Role:               acct.Role,
		SubscriptionTier:   acct.SubscriptionTier,
		SubscriptionStatus: acct.SubscriptionStatus,
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.config.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature, algorithm, issuer and expiry and
// returns its claims. Every failure maps to ErrInvalidToken.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		return i.config.Secret, nil
	}, i.parserOptions()...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// parserOptions builds JWT parser options based on the configuration.
func (i *Issuer) parserOptions() []jwtlib.ParserOption {
	return []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(i.config.Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithIssuedAt(),
		jwtlib.WithTimeFunc(i.config.Now),
	}
}
