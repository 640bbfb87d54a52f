// Package api defines the wire types of the lawlibrary HTTP API.
//
// It covers the login request and response bodies, the redacted user view
// returned to clients, structured API errors and request ID generation.
// The package performs no I/O and depends only on the standard library.
//
// Core types:
//   - [LoginRequest]: credentials posted to the login endpoint
//   - [LoginResponse]: user summary plus signed token
//   - [UserSummary]: account fields safe to expose (never the password hash)
//   - [APIError]: structured error with type, param and message
package api
