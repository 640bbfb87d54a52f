package auth

import (
	"context"

	"github.com/mylawmanager/lawlibrary/pkg/account"
)

// accountKey is a private type for the account context key.
type accountKey struct{}

// SetAccount stores the authenticated account in the context.
func SetAccount(ctx context.Context, acct *account.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acct)
}

// AccountFromContext retrieves the authenticated account.
// Returns nil if the request was not authenticated (bypassed endpoint).
func AccountFromContext(ctx context.Context) *account.Account {
	if v, ok := ctx.Value(accountKey{}).(*account.Account); ok {
		return v
	}
	return nil
}
