package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/mylawmanager/lawlibrary/pkg/account"
)

// Sentinel errors.
var (
	// ErrInvalidCredentials is returned by login for an unknown email and
	// for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a request carries no usable token
	// or the token's account is missing or inactive. The specific reason is
	// wrapped for logs only.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrTooManyRequests is returned by a RateLimiter that rejects a request.
	ErrTooManyRequests = errors.New("rate limit exceeded")

	// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72 byte
	// input limit.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Authenticator resolves the account behind an inbound request.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*account.Account, error)
}

// Operation label values for observability.AuthAttemptsTotal.
const (
	operationLogin   = "login"
	operationRequest = "request"
)
