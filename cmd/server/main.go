// Command server runs the lawlibrary authentication API.
//
// Configuration is read from a YAML file (see -config, LAWLIBRARY_CONFIG)
// with environment overrides:
//
//	JWT_SECRET              - Token signing secret (required, no default)
//	DATABASE_URL            - PostgreSQL DSN for storage type "postgres"
//	LAWLIBRARY_PORT         - Listen port (default: 8080)
//	LAWLIBRARY_STORAGE      - Storage type: "memory" or "postgres" (default: "memory")
//	LAWLIBRARY_BCRYPT_COST  - Password hashing cost (default: 12)
//	LAWLIBRARY_TOKEN_TTL    - Token lifetime, e.g. "24h"
//	LAWLIBRARY_LOG_LEVEL    - ERROR, WARN, INFO or DEBUG
//	LAWLIBRARY_DEBUG        - Comma-separated debug categories
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/account/memory"
	"github.com/mylawmanager/lawlibrary/pkg/account/postgres"
	"github.com/mylawmanager/lawlibrary/pkg/auth"
	"github.com/mylawmanager/lawlibrary/pkg/auth/jwt"
	"github.com/mylawmanager/lawlibrary/pkg/config"
	"github.com/mylawmanager/lawlibrary/pkg/debug"
	transporthttp "github.com/mylawmanager/lawlibrary/pkg/transport/http"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging := cfg.Observability.Logging
	debug.Init(logging.Debug, logging.Level, logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password hasher: %w", err)
	}

	issuer, err := jwt.New(jwt.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	login := auth.NewCredentialAuthenticator(store, hasher, issuer)
	authn := auth.NewRequestAuthenticator(store, issuer)
	authMiddleware := auth.Middleware(authn, newLimiter(cfg.Auth.RateLimit), bypassEndpoints(cfg))

	srv := transporthttp.NewServer(login, store,
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled, cfg.Observability.Metrics.Path),
		transporthttp.WithVersion(version),
		transporthttp.WithMiddleware(authMiddleware),
	)

	slog.Info("lawlibrary starting",
		"version", version,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"bcrypt_cost", hasher.Cost(),
		"token_ttl", issuer.TTL(),
	)

	return srv.ListenAndServeContext(ctx)
}

// openStore builds the configured account store.
func openStore(ctx context.Context, cfg config.StorageConfig) (account.AdminStore, error) {
	switch cfg.Type {
	case "postgres":
		store, err := postgres.Open(ctx, postgresConfig(cfg.Postgres))
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres", "migrate_on_start", cfg.Postgres.MigrateOnStart)
		return store, nil
	case "memory", "":
		slog.Warn("using in-memory account store; accounts are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func postgresConfig(c config.PostgresConfig) postgres.Config {
	pc := postgres.Config{
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MaxConnIdleTime: c.MaxConnIdleTime,
		ConnectTimeout:  c.ConnectTimeout,
		MigrateOnStart:  c.MigrateOnStart,
	}
	pc.Defaults()
	return pc
}

// newLimiter returns nil when no limit is configured so the middleware
// skips rate limiting entirely.
func newLimiter(c config.RateLimitConfig) auth.RateLimiter {
	if c.DefaultRPM == 0 && len(c.Tiers) == 0 {
		return nil
	}
	tiers := make(map[string]auth.TierConfig, len(c.Tiers))
	for name, rpm := range c.Tiers {
		tiers[name] = auth.TierConfig{RequestsPerMinute: rpm}
	}
	return auth.NewInProcessLimiter(tiers, c.DefaultRPM)
}

func bypassEndpoints(cfg *config.Config) []string {
	endpoints := append([]string(nil), auth.DefaultBypassEndpoints...)
	if p := cfg.Observability.Metrics.Path; cfg.Observability.Metrics.Enabled && p != "" && p != "/metrics" {
		endpoints = append(endpoints, p)
	}
	return endpoints
}
