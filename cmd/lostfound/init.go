package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

func newInitCmd() *cobra.Command {
	var adminEmail string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new database with a moderator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			if _, err := os.Stat(cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", cfg.DBPath)
			}

			database, password, err := initDatabase(cmd.Context(), cfg.DBPath, adminEmail)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cfg.DBPath, adminEmail, password)
			return nil
		},
	}
	cmd.Flags().StringVarP(&adminEmail, "email", "e", "", "moderator email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var email, role, password string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to an existing database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			r := model.Role(strings.ToUpper(role))
			if !r.Valid() {
				return fmt.Errorf("invalid role %q", role)
			}

			generated := password == ""
			if generated {
				password, err = generatePassword(16)
				if err != nil {
					return fmt.Errorf("generating password: %w", err)
				}
			} else if err := model.ValidatePassword(password); err != nil {
				return err
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()
			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			user, err := createAccount(cmd.Context(), database, email, password, r)
			if err != nil {
				return err
			}

			fmt.Printf("Account created: %s (%s)\n", user.Email, user.Role)
			if generated {
				fmt.Printf("  Password: %s\n", password)
			}
			return nil
		},
	}
	addCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	addCmd.Flags().StringVarP(&role, "role", "r", string(model.RoleStudent), "STUDENT or ADMIN")
	addCmd.Flags().StringVarP(&password, "password", "p", "", "password (generated when empty)")
	addCmd.MarkFlagRequired("email")

	userCmd.AddCommand(addCmd)
	return userCmd
}

// initDatabase creates a new database, ensures the schema, and creates the moderator account.
func initDatabase(ctx context.Context, path, adminEmail string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	if _, err := createAccount(ctx, database, adminEmail, password, model.RoleAdmin); err != nil {
		return fail(err)
	}

	return database, password, nil
}

func createAccount(ctx context.Context, database *sql.DB, email, password string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("valid email required")
	}

	existing, err := store.GetUserByEmail(ctx, database, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("account %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := store.CreateUser(ctx, database, email, string(hash), role)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return user, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, email, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Moderator account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
