// Package transport defines the service interfaces and HTTP middleware chain
// for the lawlibrary API.
//
// The transport layer sits between clients and the authentication services.
// Handlers in the http subpackage decode requests into the types defined in
// pkg/api, call the services declared here, and encode results or APIError
// bodies back to the client.
//
// # Middleware
//
// Middleware wraps an http.Handler. Built-in middleware provides panic
// recovery, request ID assignment (X-Request-ID), and structured logging
// via log/slog. Authentication is supplied by pkg/auth as another
// Middleware in the same chain.
package transport
