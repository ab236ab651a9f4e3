package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/episteme/server/internal/auth"
	"github.com/episteme/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	gentokenEmail  string
	gentokenExpiry time.Duration
)

var gentokenCmd = &cobra.Command{
	Use:   "gentoken",
	Short: "Generate a bearer token for a user",
	Long: `Generate a signed JWT for an existing user, looked up by email.

The token's subject is the user's ID, so the server can resolve it back
to a principal on every request.

Examples:
  server gentoken --email analyst@example.org
  server gentoken --email analyst@example.org --expiry 720h`,
	RunE: runGentoken,
}

func init() {
	gentokenCmd.Flags().StringVar(&gentokenEmail, "email", "", "email of the user to issue a token for (required)")
	gentokenCmd.Flags().DurationVar(&gentokenExpiry, "expiry", 0, "token lifetime (default: JWT_EXPIRY_HOURS)")
	_ = gentokenCmd.MarkFlagRequired("email")
}

func runGentoken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	expiry := cfg.Auth.JWTExpiry
	if gentokenExpiry > 0 {
		expiry = gentokenExpiry
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	user, err := repo.Users().FindByEmail(ctx, gentokenEmail)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", gentokenEmail, err)
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, expiry, cfg.Auth.Issuer)
	token, err := tokens.Generate(user.ID, user.Role)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
