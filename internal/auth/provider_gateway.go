package auth

import (
	"context"
	"errors"
	"log/slog"
)

// ProviderGateway はパスワード検証とユーザー作成をIdPに委譲する Gateway です。
type ProviderGateway struct {
	provider IdentityProvider
	logger   *slog.Logger
}

// NewProviderGateway は ProviderGateway を作成します。
func NewProviderGateway(provider IdentityProvider, logger *slog.Logger) *ProviderGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderGateway{provider: provider, logger: logger}
}

// Execute は Gateway を実装します。
func (g *ProviderGateway) Execute(ctx context.Context, op Operation, email, password string) Outcome {
	return dispatch(ctx, op, email, password, g.login, g.signup)
}

// SignOut は SignOuter を実装します。
func (g *ProviderGateway) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return g.provider.SignOut(ctx, accessToken)
}

func (g *ProviderGateway) login(ctx context.Context, email, password string) Outcome {
	session, err := g.provider.SignInWithPassword(ctx, email, password)
	var pErr *ProviderError
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotFound):
		return InvalidCredentials(MsgInvalidCredentials)
	case errors.As(err, &pErr):
		// IdPが応答したエラーは認証失敗として扱い、IdPの文言を表示する
		msg := pErr.Message
		if msg == "" {
			msg = MsgInvalidCredentials
		}
		return InvalidCredentials(msg)
	case err != nil:
		g.logger.Error("identity provider sign-in failed", "error", err)
		return ProviderFailure("", MsgLoginFailed, err)
	case session == nil:
		return InvalidCredentials(MsgInvalidCredentials)
	}

	identity := &Identity{AccessToken: session.AccessToken}
	if session.User != nil {
		identity.Email = session.User.Email
	}
	return Success(MsgLoginSuccess, identity)
}

func (g *ProviderGateway) signup(ctx context.Context, email, password string) Outcome {
	// 既存ユーザーの判定はIdPに任せる（作成要求に対して ErrUserExists が返る）
	_, err := g.provider.SignUp(ctx, email, password)
	switch {
	case errors.Is(err, ErrUserExists):
		return Conflict(MsgAlreadyRegistered)
	case err != nil:
		g.logger.Error("identity provider sign-up failed", "error", err)
		return ProviderFailure(providerMessage(err), MsgCreateUserFailed, err)
	}
	return Success(MsgSignupSuccess, nil)
}
