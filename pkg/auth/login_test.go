package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/account/memory"
)

func newTestLogin(t *testing.T) (*CredentialAuthenticator, *memory.Store, *Hasher, *fakeClock) {
	t.Helper()
	store := memory.New()
	h := newTestHasher(t)
	clock := newFakeClock()
	return NewCredentialAuthenticator(store, h, newTestIssuer(t, clock)), store, h, clock
}

func TestLogin_MixedCaseEmail(t *testing.T) {
	login, store, h, clock := newTestLogin(t)
	acct := seedAccount(t, store, h, "user@example.com", "correct-secret")

	resp, err := login.Login(context.Background(), "User@Example.com", "correct-secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.ID != acct.ID {
		t.Errorf("User.ID = %q, want %q", resp.User.ID, acct.ID)
	}
	if resp.User.Email != "user@example.com" {
		t.Errorf("User.Email = %q", resp.User.Email)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(body), "password") || strings.Contains(string(body), acct.PasswordHash) {
		t.Errorf("login response leaks the password hash: %s", body)
	}

	// The issued token is accepted by the verifier.
	claims, err := newTestIssuer(t, clock).Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify issued token: %v", err)
	}
	if claims.UserID != acct.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, acct.ID)
	}
}

func TestLogin_RecordsLastLogin(t *testing.T) {
	login, store, h, _ := newTestLogin(t)
	acct := seedAccount(t, store, h, "user@example.com", "correct-secret")

	if _, err := login.Login(context.Background(), "user@example.com", "correct-secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	got, _ := store.FindActiveByID(context.Background(), acct.ID)
	if got.LastLogin == nil {
		t.Error("LastLogin not recorded")
	}
}

func TestLogin_NonEnumerable(t *testing.T) {
	login, store, h, _ := newTestLogin(t)
	seedAccount(t, store, h, "user@example.com", "correct-secret")

	_, wrongPassword := login.Login(context.Background(), "user@example.com", "wrong-secret")
	_, unknownEmail := login.Login(context.Background(), "nobody@example.com", "correct-secret")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("errors differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	login, store, h, _ := newTestLogin(t)
	acct := seedAccount(t, store, h, "user@example.com", "correct-secret")
	if err := store.SetActive(context.Background(), acct.ID, false); err != nil {
		t.Fatal(err)
	}

	_, err := login.Login(context.Background(), "user@example.com", "correct-secret")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_EmptyInputsSkipStore(t *testing.T) {
	store := &stubStore{}
	login := NewCredentialAuthenticator(store, newTestHasher(t), newTestIssuer(t, newFakeClock()))

	for _, tc := range []struct{ email, password string }{
		{"", "secret"},
		{"   ", "secret"},
		{"user@example.com", ""},
	} {
		_, err := login.Login(context.Background(), tc.email, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q): expected ErrInvalidCredentials, got %v", tc.email, tc.password, err)
		}
	}
	if store.findCalls != 0 {
		t.Errorf("store queried %d times for empty input", store.findCalls)
	}
}

func TestLogin_StoreErrorIsNotInvalidCredentials(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &stubStore{findErr: storeErr}
	login := NewCredentialAuthenticator(store, newTestHasher(t), newTestIssuer(t, newFakeClock()))

	_, err := login.Login(context.Background(), "user@example.com", "secret")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("store failure must not be reported as invalid credentials")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestLogin_TouchFailureDoesNotBlock(t *testing.T) {
	h := newTestHasher(t)
	hash, _ := h.Hash("correct-secret")
	store := &stubStore{
		acct: &account.Account{
			ID:           "user-1",
			Email:        "user@example.com",
			PasswordHash: hash,
			Role:         "user",
			Active:       true,
		},
		touchErr: errors.New("write timeout"),
	}
	login := NewCredentialAuthenticator(store, h, newTestIssuer(t, newFakeClock()))

	resp, err := login.Login(context.Background(), "user@example.com", "correct-secret")
	if err != nil {
		t.Fatalf("Login should succeed despite touch failure: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected token")
	}
	if store.touchCalls != 1 {
		t.Errorf("touchCalls = %d, want 1", store.touchCalls)
	}
}
