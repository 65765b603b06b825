// Package web はログイン／サインアップ画面、ホーム画面、JSON API を gin で提供します。
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/audit"
	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/form"
	"github.com/yourusername/authgate/internal/guard"
)

//go:embed templates/*.html
var templateFS embed.FS

// activityLimit はホーム画面に表示する履歴の件数です。
const activityLimit = 10

// Recorder は認証アクティビティの記録先です。
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// ActivityReader はユーザーの直近アクティビティを返します。
type ActivityReader interface {
	Recent(ctx context.Context, email string, limit int) ([]audit.Event, error)
}

// Deps は Server の依存関係です。Recorder と Activity は任意です。
// SignOuter を省略した場合、Gateway が auth.SignOuter を実装していればそれを使います。
type Deps struct {
	Gateway   auth.Gateway
	Guard     *guard.Guard
	Form      *form.Controller
	Stores    StoreFactory
	SignOuter auth.SignOuter
	Recorder  Recorder
	Activity  ActivityReader
	Logger    *slog.Logger
}

// Server は HTTP ハンドラー群です。
type Server struct {
	guard     *guard.Guard
	form      *form.Controller
	stores    StoreFactory
	signOuter auth.SignOuter
	recorder  Recorder
	activity  ActivityReader
	attempts  *attemptTracker
	templates *template.Template
	logger    *slog.Logger
}

// NewServer は Server を作成します。
func NewServer(d Deps) (*Server, error) {
	if d.Gateway == nil || d.Guard == nil || d.Form == nil || d.Stores == nil {
		return nil, errors.New("gateway, guard, form and stores are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	signOuter := d.SignOuter
	if signOuter == nil {
		signOuter, _ = d.Gateway.(auth.SignOuter)
	}
	return &Server{
		guard:     d.Guard,
		form:      d.Form,
		stores:    d.Stores,
		signOuter: signOuter,
		recorder:  d.Recorder,
		activity:  d.Activity,
		attempts:  newAttemptTracker(),
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Mount はルーティングを登録します。セッションミドルウェアは呼び出し側で先に登録してください。
func (s *Server) Mount(router *gin.Engine) {
	router.SetHTMLTemplate(s.templates)

	router.GET("/", s.entryPage)
	router.POST("/", s.submitForm)
	router.GET("/home", s.homePage)
	router.POST("/logout", verifyCSRF(), s.logoutPage)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			// ログイン前はトークンがないので CSRF 検証しない
			authRoutes.GET("/session", s.apiSession)
			authRoutes.POST("/login", s.apiLogin)
			authRoutes.POST("/signup", s.apiSignup)
			authRoutes.POST("/logout", s.requireSession(), verifyCSRF(), s.apiLogout)
			authRoutes.GET("/activity", s.requireSession(), s.apiActivity)
		}
	}

	// 404 の内容は表示せず、セッションに応じてリダイレクトする
	router.NoRoute(s.notFound)
}

func (s *Server) record(c *gin.Context, kind audit.Kind, email string, status int) {
	if s.recorder == nil || email == "" {
		return
	}
	s.recorder.Record(c.Request.Context(), audit.Event{
		Kind:       kind,
		Email:      email,
		StatusCode: status,
		IP:         c.ClientIP(),
	})
}

func (s *Server) recordOutcome(c *gin.Context, op auth.Operation, email string, out *auth.Outcome) {
	if out == nil {
		return
	}
	var kind audit.Kind
	switch {
	case op == auth.OperationLogin && out.OK():
		kind = audit.KindLoginSucceeded
	case op == auth.OperationLogin:
		kind = audit.KindLoginFailed
	case out.OK():
		kind = audit.KindSignupSucceeded
	default:
		kind = audit.KindSignupFailed
	}
	s.record(c, kind, email, out.StatusCode)
}

func (s *Server) recentActivity(ctx context.Context, email string) []audit.Event {
	if s.activity == nil || email == "" {
		return nil
	}
	events, err := s.activity.Recent(ctx, email, activityLimit)
	if err != nil {
		s.logger.Warn("failed to load recent activity", "error", err)
		return nil
	}
	return events
}
