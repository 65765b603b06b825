package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yourusername/authgate/internal/auth/postgres"
)

const defaultDBTimeout = 30 * time.Second

// NewMigrateCmd は migrate サブコマンドを作成します。
func NewMigrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the credentials table if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, table, err := openCredentialTable(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			cmd.Println("Running migrations...")
			if err := table.Migrate(ctx); err != nil {
				return err
			}
			cmd.Println("Credentials table is ready")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultDBTimeout, "timeout for database operations (e.g., 30s, 1m)")
	return cmd
}

func openCredentialTable(ctx context.Context) (*pgxpool.Pool, *postgres.CredentialTable, error) {
	url := resolveDatabaseURL()
	if url == "" {
		return nil, nil, oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL or --database-url is required")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return pool, postgres.NewCredentialTable(pool), nil
}
