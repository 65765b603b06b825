package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/credential"
)

type addUserConfig struct {
	email         string
	passwordStdin bool
	cost          int
	timeout       time.Duration
}

// NewAddUserCmd は adduser サブコマンドを作成します。
func NewAddUserCmd() *cobra.Command {
	cfg := &addUserConfig{}

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Register an account in the credentials table",
		Long: `Registers an account the same way the signup form does.
The password is read from the first line of standard input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAddUser(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "email address of the account")
	cmd.Flags().BoolVar(&cfg.passwordStdin, "password-stdin", true, "read the password from standard input")
	cmd.Flags().IntVar(&cfg.cost, "cost", 12, "bcrypt cost")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultDBTimeout, "timeout for database operations (e.g., 30s, 1m)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runAddUser(cmd *cobra.Command, cfg *addUserConfig) error {
	if !cfg.passwordStdin {
		return oops.Code("CONFIG_INVALID").Errorf("the password can only be read from standard input")
	}
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	// サインアップフォームと同じ検証をDB接続前に行う
	if errs := credential.Validate(cfg.email, password); !errs.Empty() {
		return oops.Code("INVALID_INPUT").Errorf("%s", strings.TrimSpace(errs.Email+" "+errs.Password))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	pool, table, err := openCredentialTable(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	gateway := auth.NewTableGateway(table, auth.NewBcryptHasher(cfg.cost), slog.Default())
	out := gateway.Execute(ctx, auth.OperationSignup, cfg.email, password)
	if !out.OK() {
		return oops.Code("ADD_USER_FAILED").With("status", out.StatusCode).With("detail", out.Detail).Errorf("%s", out.Message)
	}
	cmd.Printf("Registered %s\n", cfg.email)
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
