// Package main は認証情報テーブルを管理する authctl コマンドです。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/authgate/internal/logger"
)

// 全サブコマンド共通のフラグ
var databaseURL string

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd は authctl のルートコマンドを作成します。
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Manage the authgate credential table",
		Long: `authctl manages the credential table used when AUTH_STRATEGY=table.

Environment Variables:
  DATABASE_URL  PostgreSQL connection URL (overridden by --database-url)`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (overrides DATABASE_URL)")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewAddUserCmd())
	cmd.AddCommand(NewHashCmd())

	return cmd
}

// resolveDatabaseURL はフラグ、環境変数の順に接続先を決めます。
func resolveDatabaseURL() string {
	if databaseURL != "" {
		return databaseURL
	}
	return os.Getenv("DATABASE_URL")
}
