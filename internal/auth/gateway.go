package auth

import (
	"context"
	"time"
)

// Gateway は認証操作を実行し、結果を必ず Outcome として返します。
// 下位層の失敗はすべて Outcome に変換され、エラーとしては返りません。
type Gateway interface {
	Execute(ctx context.Context, op Operation, email, password string) Outcome
}

// SignOuter はIdP側のセッションを破棄できる Gateway が実装します。
type SignOuter interface {
	SignOut(ctx context.Context, accessToken string) error
}

// IdentityProvider は外部IdP（GoTrue互換）の認証APIです。
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	SignUp(ctx context.Context, email, password string) (*ProviderUser, error)
	GetSession(ctx context.Context, accessToken string) (*ProviderSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ProviderUser はIdPが返すユーザー情報です。
type ProviderUser struct {
	ID    string
	Email string
}

// ProviderSession はIdPが発行したセッションです。
type ProviderSession struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *ProviderUser
}

// dispatch は両方式に共通の前処理（空入力の短絡、操作種別の振り分け）を行います。
func dispatch(ctx context.Context, op Operation, email, password string,
	login, signup func(ctx context.Context, email, password string) Outcome) Outcome {
	if email == "" || password == "" {
		return InvalidInput(MsgCredentialsRequired)
	}
	switch op {
	case OperationLogin:
		return login(ctx, email, password)
	case OperationSignup:
		return signup(ctx, email, password)
	default:
		return InvalidInput(MsgUnsupportedOperation)
	}
}
