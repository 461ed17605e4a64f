package main

import (
	"context"
	"errors"
	"fmt"

	"pustaka/internal/config"
	"pustaka/internal/database"
	"pustaka/internal/repositories"
	"pustaka/internal/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// runtimeEnv holds what the commands take from the outside world.
type runtimeEnv struct {
	loadConfig   func() (*config.Config, error)
	readPassword func(prompt string) (string, error)
}

func newRootCmd(env runtimeEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "pustakactl",
		Short:         "Operator tasks for the Pustaka digital library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(env),
		newCreateAdminCmd(env),
		newHashPasswordCmd(env),
	)
	return root
}

func newMigrateCmd(env runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(env, func(_ *config.Config, _ *gorm.DB) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
				return nil
			})
		},
	}
}

func newCreateAdminCmd(env runtimeEnv) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long:  "Create an administrator account. The password is prompted for when --password is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = promptNewPassword(env); err != nil {
					return err
				}
			}

			return withDatabase(env, func(cfg *config.Config, db *gorm.DB) error {
				auth := services.NewAuthService(
					repositories.NewGORMUserRepository(db),
					services.NewBcryptHasher(),
					cfg.Auth.JWTSecret,
					cfg.Auth.TokenExpiry,
					nil,
				)
				user, created, err := auth.EnsureAdmin(context.Background(), name, email, password)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s created (ID: %s)\n", user.Email, user.ID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s already exists\n", user.Email)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "password; prompted for when omitted")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newHashPasswordCmd(env runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash suitable for seeding an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				var err error
				if password, err = env.readPassword("Password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := services.NewBcryptHasher().Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func promptNewPassword(env runtimeEnv) (string, error) {
	password, err := env.readPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := env.readPassword("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

// withDatabase opens and migrates the configured database for the duration of fn.
func withDatabase(env runtimeEnv, fn func(*config.Config, *gorm.DB) error) error {
	cfg, err := env.loadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	db, err := database.Open(cfg.Database, false)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	return fn(cfg, db)
}
