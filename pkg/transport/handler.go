package transport

import (
	"context"

	"github.com/mylawmanager/lawlibrary/pkg/api"
)

// LoginService exchanges credentials for a token.
type LoginService interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
