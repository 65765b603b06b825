// Package form はログイン／サインアップフォーム送信の一連の処理をまとめます。
package form

import (
	"context"
	"log/slog"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/credential"
	"github.com/yourusername/authgate/internal/guard"
	"github.com/yourusername/authgate/internal/session"
)

// Result はフォームに表示する内容です。
type Result struct {
	Operation   auth.Operation
	FieldErrors credential.Errors
	// Message はフィールド以外の通知です。検証エラーで中断した場合は空です。
	Message string
	Success bool
	// Outcome は Gateway を呼んだ場合のみ設定されます。
	Outcome *auth.Outcome
	// Navigated はホームへ遷移した場合に true です。
	Navigated bool
}

// ClearFields は成功時に入力欄を空に戻すかどうかを返します。
func (r Result) ClearFields() bool {
	return r.Success
}

// Controller は Credential Validator → Auth Gateway → Session Store → Route Guard の順に処理します。
type Controller struct {
	gateway   auth.Gateway
	guard     *guard.Guard
	autoLogin bool
	logger    *slog.Logger
}

// Options は Controller の設定です。
type Options struct {
	// AutoLoginAfterSignup が true の場合、サインアップ成功後にそのままログインします。
	AutoLoginAfterSignup bool
	Logger               *slog.Logger
}

// NewController は Controller を作成します。
func NewController(gateway auth.Gateway, g *guard.Guard, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gateway:   gateway,
		guard:     g,
		autoLogin: opts.AutoLoginAfterSignup,
		logger:    logger,
	}
}

// Submit はフォーム送信1回分を処理します。
// 失敗時は Session Store を変更しません。
func (c *Controller) Submit(ctx context.Context, op auth.Operation, email, password string,
	store session.Store, nav guard.Navigator) Result {
	res := Result{Operation: op}

	res.FieldErrors = credential.Validate(email, password)
	if !res.FieldErrors.Empty() {
		return res
	}

	out := c.gateway.Execute(ctx, op, email, password)
	res.Outcome = &out
	res.Message = out.Message
	if !out.OK() {
		if out.Detail != "" {
			c.logger.Info("auth operation failed", "operation", op, "status", out.StatusCode, "detail", out.Detail)
		}
		return res
	}

	switch op {
	case auth.OperationLogin:
		return c.establish(ctx, res, out, store, nav)
	case auth.OperationSignup:
		if !c.autoLogin {
			res.Success = true
			return res
		}
		login := c.gateway.Execute(ctx, auth.OperationLogin, email, password)
		if !login.OK() {
			// アカウントは作成済みなのでサインアップの成功メッセージを残す
			c.logger.Info("auto login after signup failed", "status", login.StatusCode, "detail", login.Detail)
			res.Success = true
			return res
		}
		return c.establish(ctx, res, login, store, nav)
	}
	return res
}

func (c *Controller) establish(ctx context.Context, res Result, out auth.Outcome,
	store session.Store, nav guard.Navigator) Result {
	identity := auth.Identity{}
	if out.Identity != nil {
		identity = *out.Identity
	}
	if err := store.Create(ctx, identity); err != nil {
		c.logger.Error("session create failed", "error", err)
		res.Message = auth.MsgLoginFailed
		res.Success = false
		return res
	}

	res.Outcome = &out
	res.Message = out.Message
	res.Success = true
	c.guard.Admit(nav)
	res.Navigated = true
	return res
}
