package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mylawmanager/lawlibrary/pkg/api"
	"github.com/mylawmanager/lawlibrary/pkg/debug"
	"github.com/mylawmanager/lawlibrary/pkg/observability"
	"github.com/mylawmanager/lawlibrary/pkg/transport"
)

// Middleware creates HTTP middleware from an Authenticator and optional
// RateLimiter. It checks the bypass list, authenticates the request,
// enforces rate limits and injects the account into the context.
func Middleware(authn Authenticator, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check bypass list.
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			acct, err := authn.Authenticate(r.Context(), r)
			if errors.Is(err, ErrUnauthenticated) {
				debug.Log("auth", "authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"reason", err,
				)
				transport.WriteAPIError(w, api.NewUnauthorizedError(ErrUnauthenticated.Error()))
				return
			}
			if err != nil {
				slog.Error("authentication error",
					"path", r.URL.Path,
					"error", err,
				)
				transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
				return
			}

			debug.Log("auth", "authentication succeeded",
				"account_id", acct.ID,
				"path", r.URL.Path,
			)

			// Rate limiting (if configured).
			if limiter != nil {
				if err := limiter.Allow(r.Context(), acct); err != nil {
					slog.Warn("rate limit exceeded",
						"account_id", acct.ID,
						"tier", acct.SubscriptionTier,
					)
					observability.RateLimitRejectedTotal.WithLabelValues(acct.SubscriptionTier).Inc()
					transport.WriteAPIError(w, api.NewTooManyRequestsError(ErrTooManyRequests.Error()))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(SetAccount(r.Context(), acct)))
		})
	}
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics", "/api/auth/login"}
