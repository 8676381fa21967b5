// Command worklogctl manages worklog accounts and demo data.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/models"
	"worklog/internal/repository"
	"worklog/internal/seed"
	"worklog/internal/service"
)

var errUsage = errors.New("usage")

const usage = `Usage:
  worklogctl create-user <username> <password>   - Create a login account
  worklogctl list-users                          - List all accounts
  worklogctl seed [count]                        - Insert generated entries (default 10)
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "worklogctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	switch args[0] {
	case "create-user":
		if len(args) != 3 {
			return fmt.Errorf("%w: create-user <username> <password>", errUsage)
		}
		return createUser(ctx, service.NewAuthService(repository.NewUserRepository(db)), args[1], args[2], out)

	case "list-users":
		return listUsers(ctx, service.NewAuthService(repository.NewUserRepository(db)), out)

	case "seed":
		count := 10
		if len(args) > 1 {
			count, err = strconv.Atoi(args[1])
			if err != nil || count <= 0 {
				return fmt.Errorf("%w: seed count must be a positive integer", errUsage)
			}
		}
		entries := service.NewEntryService(repository.NewEntryRepository(db))
		return seedEntries(ctx, seed.NewFactory(entries, seed.Options{}), count, out)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func createUser(ctx context.Context, auth *service.AuthService, username, password string, out io.Writer) error {
	user, err := auth.CreateUser(ctx, username, password)
	if errors.Is(err, models.ErrUserExists) {
		return fmt.Errorf("user %q already exists", username)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created user %s (ID: %d)\n", user.Username, user.ID)
	return nil
}

func listUsers(ctx context.Context, auth *service.AuthService, out io.Writer) error {
	users, err := auth.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(out, "No users found")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(out, "ID: %d | Username: %s | Created: %s\n", u.ID, u.Username, u.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func seedEntries(ctx context.Context, f *seed.Factory, count int, out io.Writer) error {
	created, err := f.CreateEntries(ctx, count)
	fmt.Fprintf(out, "Created %d entries\n", len(created))
	return err
}
