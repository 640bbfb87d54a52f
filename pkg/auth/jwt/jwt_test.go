package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/mylawmanager/lawlibrary/pkg/account"
)

var testSecret = []byte("test-signing-secret")

// fakeClock is a movable clock for expiry tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testAccount() *account.Account {
	return &account.Account{
		ID:                 "acct-1",
		Email:              "user@example.com",
		Name:               "Test User",
		PasswordHash:       "$2a$12$notarealhash",
		Role:               "user",
		SubscriptionTier:   "pro",
		SubscriptionStatus: "active",
		Active:             true,
	}
}

func newTestIssuer(t *testing.T, clock *fakeClock) *Issuer {
	t.Helper()
	cfg := Config{Secret: testSecret}
	if clock != nil {
		cfg.Now = clock.Now
	}
	iss, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return iss
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("New() with empty secret: err = %v, want ErrMissingSecret", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	iss := newTestIssuer(t, nil)
	if iss.config.Issuer != DefaultIssuer {
		t.Errorf("Issuer = %q, want %q", iss.config.Issuer, DefaultIssuer)
	}
	if iss.TTL() != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", iss.TTL())
	}
}

func TestIssueAndVerify(t *testing.T) {
	iss := newTestIssuer(t, nil)
	acct := testAccount()

	tok, err := iss.Issue(acct)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token is not a compact JWS: %q", tok)
	}

	claims, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}

	if claims.UserID != acct.ID || claims.Subject != acct.ID {
		t.Errorf("id = %q / sub = %q, want %q", claims.UserID, claims.Subject, acct.ID)
	}
	if claims.Email != acct.Email {
		t.Errorf("Email = %q, want %q", claims.Email, acct.Email)
	}
	if claims.Role != "user" || claims.SubscriptionTier != "pro" || claims.SubscriptionStatus != "active" {
		t.Errorf("snapshot attributes wrong: %+v", claims)
	}
	if claims.Issuer != DefaultIssuer {
		t.Errorf("iss = %q, want %q", claims.Issuer, DefaultIssuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Errorf("exp - iat = %v, want 24h", got)
	}
}

func TestIssue_PayloadOmitsPasswordHash(t *testing.T) {
	iss := newTestIssuer(t, nil)

	tok, err := iss.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	parts := strings.Split(tok, ".")
	payload, err := jwtlib.NewParser().DecodeSegment(parts[1])
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if strings.Contains(string(payload), "notarealhash") || strings.Contains(string(payload), "password") {
		t.Errorf("payload leaks the password hash: %s", payload)
	}
}

func TestVerify_Expired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(t, clock)

	tok, err := iss.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	clock.Advance(23 * time.Hour)
	if _, err := iss.Verify(tok); err != nil {
		t.Fatalf("Verify() before expiry: %v", err)
	}

	clock.Advance(time.Hour + time.Second)
	if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() after expiry: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_AlteredSignature(t *testing.T) {
	iss := newTestIssuer(t, nil)

	tok, err := iss.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	// Flip one character in the middle of the signature segment.
	sigStart := strings.LastIndex(tok, ".") + 1
	pos := sigStart + (len(tok)-sigStart)/2
	replacement := byte('A')
	if tok[pos] == 'A' {
		replacement = 'B'
	}
	tampered := tok[:pos] + string(replacement) + tok[pos+1:]

	if _, err := iss.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify(tampered) err = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Rejections(t *testing.T) {
	iss := newTestIssuer(t, nil)
	now := time.Now()

	sign := func(t *testing.T, method jwtlib.SigningMethod, key any, claims Claims) string {
		t.Helper()
		s, err := jwtlib.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		return s
	}

	valid := func() Claims {
		return Claims{
			RegisteredClaims: jwtlib.RegisteredClaims{
				Subject:   "acct-1",
				Issuer:    DefaultIssuer,
				IssuedAt:  jwtlib.NewNumericDate(now),
				ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: "acct-1",
		}
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"empty", func(*testing.T) string { return "" }},
		{"garbage", func(*testing.T) string { return "not.a.jwt" }},
		{"wrong secret", func(t *testing.T) string {
			return sign(t, jwtlib.SigningMethodHS256, []byte("other-secret"), valid())
		}},
		{"wrong issuer", func(t *testing.T) string {
			c := valid()
			c.Issuer = "someone-else"
			return sign(t, jwtlib.SigningMethodHS256, testSecret, c)
		}},
		{"no expiry", func(t *testing.T) string {
			c := valid()
			c.ExpiresAt = nil
			return sign(t, jwtlib.SigningMethodHS256, testSecret, c)
		}},
		{"other HMAC algorithm", func(t *testing.T) string {
			return sign(t, jwtlib.SigningMethodHS512, testSecret, valid())
		}},
		{"alg none", func(t *testing.T) string {
			return sign(t, jwtlib.SigningMethodNone, jwtlib.UnsafeAllowNoneSignatureType, valid())
		}},
		{"missing id", func(t *testing.T) string {
			c := valid()
			c.UserID = ""
			return sign(t, jwtlib.SigningMethodHS256, testSecret, c)
		}},
		{"subject mismatch", func(t *testing.T) string {
			c := valid()
			c.Subject = "acct-2"
			return sign(t, jwtlib.SigningMethodHS256, testSecret, c)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token(t))
			if err != ErrInvalidToken {
				t.Errorf("err = %v, want exactly ErrInvalidToken", err)
			}
		})
	}
}

func TestVerify_SecretRotationInvalidatesTokens(t *testing.T) {
	iss := newTestIssuer(t, nil)
	tok, err := iss.Issue(testAccount())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	rotated, err := New(Config{Secret: []byte("rotated-secret")})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := rotated.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() with rotated secret: err = %v, want ErrInvalidToken", err)
	}
}
