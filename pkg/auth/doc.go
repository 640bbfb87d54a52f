// Package auth authenticates lawlibrary users.
//
// Login exchanges an email and password for a signed token (see package
// jwt). Every protected request then presents that token as a bearer
// credential; the request authenticator verifies it and re-fetches the
// account from the store, so deactivation and role changes take effect on
// the next request rather than at token expiry.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// handlers. The middleware places the freshly loaded account into the
// request context and optionally enforces per-tier rate limits.
//
// Failure causes are collapsed on purpose: login reports ErrInvalidCredentials
// for both unknown accounts and wrong passwords, and request authentication
// reports ErrUnauthenticated whatever the reason.
package auth
