// Command lawctl performs operator tasks against the lawlibrary account store.
//
// Usage:
//
//	lawctl [-dsn DSN] <command> [flags]
//
// Commands:
//
//	create-user   -email E -name N [-role R] [-tier T]   (password read from stdin)
//	deactivate    -id ID
//	activate      -id ID
//	set-role      -id ID -role R
//	hash-password [-cost C]                               (password read from stdin)
//	migrate
//
// The DSN defaults to DATABASE_URL. Passwords are never accepted as flags.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mylawmanager/lawlibrary/pkg/account"
	"github.com/mylawmanager/lawlibrary/pkg/account/postgres"
	"github.com/mylawmanager/lawlibrary/pkg/auth"
)

var errUsage = errors.New("usage: lawctl [-dsn DSN] create-user|deactivate|activate|set-role|hash-password|migrate [flags]")

// opener connects to the account store for a DSN.
type opener func(ctx context.Context, dsn string) (account.AdminStore, error)

func openPostgres(ctx context.Context, dsn string) (account.AdminStore, error) {
	cfg := postgres.Config{DSN: dsn}
	cfg.Defaults()
	return postgres.Open(ctx, cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, openPostgres); err != nil {
		fmt.Fprintln(os.Stderr, "lawctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, open opener) error {
	global := flag.NewFlagSet("lawctl", flag.ContinueOnError)
	dsn := global.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errUsage
	}

	cmd, rest := global.Arg(0), global.Args()[1:]

	// hash-password needs no store.
	if cmd == "hash-password" {
		return hashPassword(rest, stdin, stdout)
	}

	if *dsn == "" {
		return errors.New("no database configured: set -dsn or DATABASE_URL")
	}

	if cmd == "migrate" {
		return migrate(ctx, *dsn, stdout)
	}

	store, err := open(ctx, *dsn)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	switch cmd {
	case "create-user":
		return createUser(ctx, store, rest, stdin, stdout)
	case "deactivate":
		return setActive(ctx, store, rest, false, stdout)
	case "activate":
		return setActive(ctx, store, rest, true, stdout)
	case "set-role":
		return setRole(ctx, store, rest, stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func createUser(ctx context.Context, store account.AdminStore, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "account email (required)")
	name := fs.String("name", "", "display name")
	role := fs.String("role", account.DefaultRole, "account role")
	tier := fs.String("tier", account.DefaultSubscriptionTier, "subscription tier")
	cost := fs.Int("cost", auth.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("create-user: -email is required")
	}

	password, err := readPassword(stdin)
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(*cost)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	acct, err := store.Create(ctx, &account.Account{
		Email:            *email,
		Name:             *name,
		PasswordHash:     hash,
		Role:             *role,
		SubscriptionTier: *tier,
	})
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}

	slog.Info("account created", "account_id", acct.ID, "role", acct.Role)
	fmt.Fprintln(stdout, acct.ID)
	return nil
}

func setActive(ctx context.Context, store account.AdminStore, args []string, active bool, stdout io.Writer) error {
	fs := flag.NewFlagSet("set-active", flag.ContinueOnError)
	id := fs.String("id", "", "account ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	if err := store.SetActive(ctx, *id, active); err != nil {
		return fmt.Errorf("updating account %s: %w", *id, err)
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(stdout, "%s %s\n", *id, state)
	return nil
}

func setRole(ctx context.Context, store account.AdminStore, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	id := fs.String("id", "", "account ID (required)")
	role := fs.String("role", "", "new role (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || strings.TrimSpace(*role) == "" {
		return errors.New("set-role: -id and -role are required")
	}

	if err := store.SetRole(ctx, *id, *role); err != nil {
		return fmt.Errorf("updating account %s: %w", *id, err)
	}
	fmt.Fprintf(stdout, "%s role=%s\n", *id, *role)
	return nil
}

func hashPassword(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", auth.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := readPassword(stdin)
	if err != nil {
		return err
	}

	hasher, err := auth.NewHasher(*cost)
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

func migrate(ctx context.Context, dsn string, stdout io.Writer) error {
	cfg := postgres.Config{DSN: dsn}
	cfg.Defaults()

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "migrations applied")
	return nil
}

// readPassword reads the first line of stdin.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}
