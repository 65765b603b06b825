// Package guard はページ表示前にセッションを確認し、表示するか遷移するかを決めます。
package guard

import (
	"context"
	"log/slog"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/session"
)

const (
	// EntryPath はログイン／サインアップフォームのあるページです。
	EntryPath = "/"
	// HomePath は認証済みユーザー向けのページです。
	HomePath = "/home"
)

// State は Guard の判定状態です。
type State int

const (
	StateChecking State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Page はページの分類です。
type Page int

const (
	// PageProtected は認証済みのときだけ表示するページです。
	PageProtected Page = iota
	// PageNeutral はログインフォームのページです。認証済みなら HomePath へ遷移します。
	PageNeutral
	// PageNotFound は存在しないパスです。内容は表示せず、状態に応じて遷移だけ行います。
	PageNotFound
)

func (p Page) String() string {
	switch p {
	case PageProtected:
		return "protected"
	case PageNeutral:
		return "neutral"
	case PageNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Navigator は画面遷移を行います。
type Navigator interface {
	NavigateTo(path string)
}

// Decision は Guard 1回分の結論です。Render と Redirect のどちらか一方だけが設定されます。
type Decision struct {
	State    State
	Session  *session.Session
	Render   bool
	Redirect string
}

// Observer は判定結果を受け取ります（メトリクス用）。
type Observer interface {
	ObserveDecision(page Page, state State)
}

// Guard はページ種別ごとの遷移規則を実行します。
type Guard struct {
	observer Observer
	logger   *slog.Logger
}

// Option は Guard の設定です。
type Option func(*Guard)

// WithObserver は判定結果の通知先を設定します。
func WithObserver(o Observer) Option {
	return func(g *Guard) { g.observer = o }
}

// WithLogger はロガーを設定します。
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// New は Guard を作成します。
func New(opts ...Option) *Guard {
	g := &Guard{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run はページ入場時の判定を行い、必要なら nav で遷移します。
// 戻り値は「表示する」か「1回遷移した」のどちらかです。
func (g *Guard) Run(ctx context.Context, page Page, store session.Store, nav Navigator) Decision {
	// StateChecking から読み出し結果で確定させる
	var state State
	sess, ok := store.Read(ctx)
	if ok && sess.Valid() {
		state = StateAuthenticated
	} else {
		state = StateUnauthenticated
		sess = nil
	}

	var d Decision
	switch page {
	case PageProtected:
		if state == StateAuthenticated {
			d = Decision{State: state, Session: sess, Render: true}
		} else {
			d = Decision{State: state, Redirect: EntryPath}
		}
	case PageNeutral:
		if state == StateAuthenticated {
			d = Decision{State: state, Session: sess, Redirect: HomePath}
		} else {
			d = Decision{State: state, Render: true}
		}
	default:
		if state == StateAuthenticated {
			d = Decision{State: state, Session: sess, Redirect: HomePath}
		} else {
			d = Decision{State: state, Redirect: EntryPath}
		}
	}

	if d.Redirect != "" {
		nav.NavigateTo(d.Redirect)
	}
	if g.observer != nil {
		g.observer.ObserveDecision(page, d.State)
	}
	return d
}

// Admit はログイン成功直後の遷移（HomePath へ）を行います。
func (g *Guard) Admit(nav Navigator) {
	nav.NavigateTo(HomePath)
}

// Logout はIdPのサインアウト（対応していれば）、セッション削除、EntryPath への遷移を行います。
// IdPのサインアウトに失敗してもローカルのセッションは削除します。
func (g *Guard) Logout(ctx context.Context, store session.Store, signOuter auth.SignOuter, nav Navigator) error {
	if signOuter != nil {
		if sess, ok := store.Read(ctx); ok && sess.AccessToken != "" {
			if err := signOuter.SignOut(ctx, sess.AccessToken); err != nil {
				g.logger.Warn("provider sign-out failed", "error", err)
			}
		}
	}

	if err := store.Clear(ctx); err != nil {
		return err
	}
	nav.NavigateTo(EntryPath)
	return nil
}
