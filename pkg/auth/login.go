package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/api"
	"github.com/mylawmanager/lawlibrary/pkg/auth/jwt"
	"github.com/mylawmanager/lawlibrary/pkg/debug"
	"github.com/mylawmanager/lawlibrary/pkg/observability"
)

// CredentialAuthenticator exchanges an email and password for a token.
type CredentialAuthenticator struct {
	store  account.Store
	hasher *Hasher
	issuer *jwt.Issuer
}

// NewCredentialAuthenticator creates a CredentialAuthenticator.
func NewCredentialAuthenticator(store account.Store, hasher *Hasher, issuer *jwt.Issuer) *CredentialAuthenticator {
	return &CredentialAuthenticator{
		store:  store,
		hasher: hasher,
		issuer: issuer,
	}
}

// Login looks up the active account for email, checks the password, records
// the login and issues a token.
//
// An unknown email and a wrong password both return ErrInvalidCredentials.
// Store failures are returned wrapped and are not ErrInvalidCredentials.
func (a *CredentialAuthenticator) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	resp, err := a.login(ctx, email, password)
	observability.AuthAttemptsTotal.WithLabelValues(operationLogin, loginOutcome(err)).Inc()
	return resp, err
}

func (a *CredentialAuthenticator) login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	email = account.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	acct, err := a.store.FindActiveByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		a.hasher.Equalize(password)
		debug.Log("auth", "login rejected", "reason", "no active account")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !a.hasher.Verify(password, acct.PasswordHash) {
		debug.Log("auth", "login rejected", "reason", "password mismatch", "account_id", acct.ID)
		return nil, ErrInvalidCredentials
	}

	// Last login is advisory; a failed update does not block the login.
	if err := a.store.TouchLastLogin(ctx, acct.ID); err != nil {
		slog.Warn("failed to record last login", "account_id", acct.ID, "error", err)
	}

	token, err := a.issuer.Issue(acct)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	slog.Info("login succeeded", "account_id", acct.ID)

	return &api.LoginResponse{
		User:  acct.Summary(),
		Token: token,
	}, nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.Is(err, ErrInvalidCredentials):
		return observability.OutcomeInvalidCredentials
	default:
		return observability.OutcomeError
	}
}
