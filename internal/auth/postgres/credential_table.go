// Package postgres は auth.CredentialTable の PostgreSQL 実装です。
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/yourusername/authgate/internal/auth"
)

// Schema は credentials テーブルの定義です。
// email に一意制約は付けません（重複判定は TableGateway が行います）。
const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS credentials_email_idx ON credentials (email);
`

// poolIface は *pgxpool.Pool と pgxmock の共通部分です。
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CredentialTable は auth.CredentialTable を PostgreSQL で実装します。
type CredentialTable struct {
	pool poolIface
}

// NewCredentialTable は CredentialTable を作成します。
func NewCredentialTable(pool poolIface) *CredentialTable {
	return &CredentialTable{pool: pool}
}

// Migrate はテーブルとインデックスを作成します。何度実行しても構いません。
func (t *CredentialTable) Migrate(ctx context.Context) error {
	if _, err := t.pool.Exec(ctx, Schema); err != nil {
		return oops.Code("CREDENTIAL_MIGRATE_FAILED").
			With("operation", "create credentials table").
			Wrap(err)
	}
	return nil
}

// FindByEmail はメールアドレス完全一致で最も古い行を返します。
func (t *CredentialTable) FindByEmail(ctx context.Context, email string) (*auth.CredentialRecord, error) {
	row := t.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM credentials
		WHERE email = $1
		ORDER BY created_at
		LIMIT 1
	`, email)

	var rec auth.CredentialRecord
	err := row.Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_FAILED").
			With("operation", "find credential by email").
			With("email", email).
			Wrap(err)
	}
	return &rec, nil
}

// Insert は行を追加します。DB側に一意制約が追加されている場合、
// 違反は auth.ErrDuplicateEmail として返します。
func (t *CredentialTable) Insert(ctx context.Context, record *auth.CredentialRecord) error {
	_, err := t.pool.Exec(ctx, `
		INSERT INTO credentials (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.ID, record.Email, record.PasswordHash, record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("CREDENTIAL_DUPLICATE_EMAIL").
				With("email", record.Email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("CREDENTIAL_INSERT_FAILED").
			With("operation", "insert credential").
			With("email", record.Email).
			Wrap(err)
	}
	return nil
}
