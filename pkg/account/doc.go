// Package account defines the registered-user record and the store
// contract the authentication layer consumes.
//
// Store adapters (memory, postgres) live in subpackages. This package holds
// only the shared types, sentinel errors and helpers; it performs no I/O.
//
// An account is never hard-deleted. Clearing the active flag is the terminal
// state, and every lookup used for authentication filters on it.
package account
