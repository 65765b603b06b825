package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CredentialRecord はアプリ管理テーブルの1行です。
type CredentialRecord struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialTable はメールアドレス完全一致での検索と追加ができるテーブルです。
// 一意制約はストレージ側にない前提で、重複判定は Gateway が行います。
type CredentialTable interface {
	// FindByEmail はレコードを返します。存在しない場合は ErrNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*CredentialRecord, error)
	Insert(ctx context.Context, record *CredentialRecord) error
}

// TableGateway は資格情報を自前のテーブルに保存し、ハッシュ化と照合をローカルで行う Gateway です。
//
// サインアップ時の存在確認と追加はアトミックではありません。同じメールアドレスで
// 同時にサインアップすると両方が確認を通過し得ます。ストレージ側に一意制約がある場合のみ
// Insert が ErrDuplicateEmail を返し、競合として扱われます。
type TableGateway struct {
	table  CredentialTable
	hasher PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewTableGateway は TableGateway を作成します。
func NewTableGateway(table CredentialTable, hasher PasswordHasher, logger *slog.Logger) *TableGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableGateway{
		table:  table,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Execute は Gateway を実装します。
func (g *TableGateway) Execute(ctx context.Context, op Operation, email, password string) Outcome {
	return dispatch(ctx, op, email, password, g.login, g.signup)
}

func (g *TableGateway) login(ctx context.Context, email, password string) Outcome {
	record, err := g.table.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return InvalidCredentials(MsgInvalidCredentials)
	}
	if err != nil {
		g.logger.Error("credential lookup failed", "error", err)
		return ProviderFailure("", MsgLoginFailed, err)
	}

	ok, err := g.hasher.Compare(record.PasswordHash, password)
	if err != nil {
		g.logger.Error("password comparison failed", "error", err)
		return ProviderFailure("", MsgLoginFailed, err)
	}
	if !ok {
		return InvalidCredentials(MsgInvalidCredentials)
	}
	return Success(MsgLoginSuccess, &Identity{Email: record.Email})
}

func (g *TableGateway) signup(ctx context.Context, email, password string) Outcome {
	existing, err := g.table.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return Conflict(MsgAlreadyRegistered)
	case err != nil && !errors.Is(err, ErrNotFound):
		g.logger.Error("credential lookup failed", "error", err)
		return ProviderFailure("", MsgCreateUserFailed, err)
	}

	hash, err := g.hasher.Hash(password)
	if err != nil {
		g.logger.Error("password hashing failed", "error", err)
		return ProviderFailure("", MsgCreateUserFailed, err)
	}

	record := &CredentialRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    g.now().UTC(),
	}
	if err := g.table.Insert(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return Conflict(MsgAlreadyRegistered)
		}
		g.logger.Error("credential insert failed", "error", err)
		return ProviderFailure("", MsgCreateUserFailed, err)
	}
	return Success(MsgSignupSuccess, nil)
}
