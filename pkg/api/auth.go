package api

import "strings"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (r *LoginRequest) Validate() *APIError {
	if strings.TrimSpace(r.Email) == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if r.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	return nil
}

// UserSummary is the redacted account view returned to clients.
type UserSummary struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	SubscriptionTier   string `json:"subscription_tier"`
	SubscriptionStatus string `json:"subscription_status"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User UserSummary `json:"user"`
}
