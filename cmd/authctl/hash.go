package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/authgate/internal/auth"
)

// NewHashCmd は hash サブコマンドを作成します。
// 手作業でテーブルに行を入れる場合などにパスワードハッシュを出力します。
func NewHashCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the bcrypt hash of a password read from standard input",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hasher := auth.NewBcryptHasher(cost)
			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost (raised to the minimum if lower)")
	return cmd
}
