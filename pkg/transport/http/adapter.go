package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mylawmanager/lawlibrary/pkg/api"
	"github.com/mylawmanager/lawlibrary/pkg/auth"
	"github.com/mylawmanager/lawlibrary/pkg/debug"
	"github.com/mylawmanager/lawlibrary/pkg/transport"
)

// Adapter serves the lawlibrary auth API over HTTP.
// It routes requests to the appropriate handler and serializes responses.
type Adapter struct {
	login   transport.LoginService
	health  transport.HealthChecker // nil if no dependency to probe
	handler http.Handler
	config  Config
	started time.Time
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize    int64
	MetricsEnabled bool
	MetricsPath    string
	ReadyTimeout   time.Duration
	Version        string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:    1 << 20, // 1 MB
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
		ReadyTimeout:   2 * time.Second,
	}
}

// NewAdapter creates an HTTP adapter. The middleware wraps every route in
// the given order; authentication middleware should list the public routes
// (login, probes, metrics) in its bypass set.
func NewAdapter(login transport.LoginService, health transport.HealthChecker, cfg Config, middlewares ...transport.Middleware) *Adapter {
	a := &Adapter{
		login:   login,
		health:  health,
		config:  cfg,
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)
	mux.HandleFunc("GET /api/auth/me", a.handleMe)
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	if cfg.MetricsEnabled {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	a.handler = transport.Chain(middlewares...)(mux)
	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.handler
}

// handleLogin handles POST /api/auth/login.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	// Validate Content-Type.
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			debug.Log("transport", "unsupported content type", "content_type", ct)
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return
		}
	}

	// Limit body size.
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON"),
			http.StatusBadRequest,
		)
		return
	}

	if apiErr := req.Validate(); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.login.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeLoginError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, resp)
}

func (a *Adapter) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		transport.WriteAPIError(w, api.NewUnauthorizedError(auth.ErrInvalidCredentials.Error()))
	default:
		slog.Error("login failed",
			"request_id", transport.RequestIDFromContext(r.Context()),
			"error", err,
		)
		transport.WriteAPIError(w, api.NewServerError("login failed"))
	}
}

// handleMe handles GET /api/auth/me. It returns the account resolved by the
// auth middleware, which is always the current store record.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	acct := auth.AccountFromContext(r.Context())
	if acct == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError(auth.ErrUnauthenticated.Error()))
		return
	}

	transport.WriteJSON(w, http.StatusOK, api.MeResponse{User: acct.Summary()})
}

// handleHealthz handles GET /healthz. It only reports that the process is up.
func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReadyz handles GET /readyz. It pings the account store and reports
// 503 when the store is unreachable.
func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := api.HealthStatus{
		Status:   api.HealthHealthy,
		Version:  a.config.Version,
		Services: map[string]string{"api": api.HealthHealthy},
	}
	code := http.StatusOK

	if a.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), a.readyTimeout())
		err := a.health.Ping(ctx)
		cancel()

		if err != nil {
			slog.Warn("readiness check failed", "error", err)
			status.Status = api.HealthDegraded
			status.Services["database"] = api.HealthUnhealthy
			code = http.StatusServiceUnavailable
		} else {
			status.Services["database"] = api.HealthHealthy
		}
	}

	now := time.Now()
	status.Timestamp = now.UTC().Format(time.RFC3339)
	status.Performance = api.HealthPerformance{
		UptimeSeconds:  now.Sub(a.started).Seconds(),
		ResponseTimeMS: now.Sub(start).Milliseconds(),
	}

	transport.WriteJSON(w, code, status)
}

func (a *Adapter) readyTimeout() time.Duration {
	if a.config.ReadyTimeout > 0 {
		return a.config.ReadyTimeout
	}
	return 2 * time.Second
}
