package commands

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/services/auth"
)

// NewUserCmd creates the user management command with create, activate, and
// deactivate subcommands.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create user accounts or toggle their active status",
	}
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserSetActiveCmd("activate", true))
	cmd.AddCommand(newUserSetActiveCmd("deactivate", false))
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email string
	var password string
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if _, err := mail.ParseAddress(email); err != nil {
				return fmt.Errorf("invalid email address: %s", email)
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			repo, cleanup, err := openUserRepo()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			if existing, err := repo.GetByEmail(ctx, email); err == nil && existing != nil {
				return fmt.Errorf("a user with email %s already exists", email)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			now := time.Now().UTC()
			user := &models.User{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: hash,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				user.Name = &trimmed
			}

			if err := repo.Create(ctx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password, minimum 8 characters (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newUserSetActiveCmd(use string, active bool) *cobra.Command {
	var email string

	short := "Deactivate a user account, blocking logins"
	done := "deactivated"
	if active {
		short = "Reactivate a user account"
		done = "activated"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			repo, cleanup, err := openUserRepo()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			user, err := repo.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}

			if user.IsActive == active {
				fmt.Printf("User %s is already %s\n", user.Email, done)
				return nil
			}

			user.IsActive = active
			user.UpdatedAt = time.Now().UTC()
			if err := repo.Update(ctx, user); err != nil {
				return fmt.Errorf("update user: %w", err)
			}

			fmt.Printf("User %s %s\n", user.Email, done)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	return cmd
}

func openUserRepo() (database.UserRepositoryInterface, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return database.NewUserRepository(db), cleanup, nil
}
