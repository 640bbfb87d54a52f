package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/auth/jwt"
	"github.com/mylawmanager/lawlibrary/pkg/observability"
)

const bearerPrefix = "Bearer "

// RequestAuthenticator turns a bearer token into the live account it names.
type RequestAuthenticator struct {
	store  account.Store
	issuer *jwt.Issuer
}

// NewRequestAuthenticator creates a RequestAuthenticator.
func NewRequestAuthenticator(store account.Store, issuer *jwt.Issuer) *RequestAuthenticator {
	return &RequestAuthenticator{
		store:  store,
		issuer: issuer,
	}
}

// Authenticate verifies the request's bearer token and re-fetches the
// account it references. The returned account is the current store record,
// not the token snapshot.
//
// Missing or malformed headers, invalid tokens, and unknown or inactive
// accounts all return an error matching ErrUnauthenticated. Other store
// failures are returned wrapped.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*account.Account, error) {
	acct, err := a.authenticate(ctx, r)
	observability.AuthAttemptsTotal.WithLabelValues(operationRequest, requestOutcome(err)).Inc()
	return acct, err
}

func (a *RequestAuthenticator) authenticate(ctx context.Context, r *http.Request) (*account.Account, error) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, fmt.Errorf("%w: no valid authorization header", ErrUnauthenticated)
	}

	claims, err := a.issuer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	acct, err := a.store.FindActiveByID(ctx, claims.UserID)
	if errors.Is(err, account.ErrNotFound) {
		return nil, fmt.Errorf("%w: user not found or inactive", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}

	return acct, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It reports false when the header is absent, uses another scheme,
// or carries an empty token.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}

func requestOutcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.Is(err, ErrUnauthenticated):
		return observability.OutcomeUnauthenticated
	default:
		return observability.OutcomeError
	}
}
