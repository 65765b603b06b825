package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/session"
)

const (
	// SessionCookieName はブラウザを識別する署名付きクッキーの名前です。
	SessionCookieName = "ag_session"
	sessionKeyBrowser = "browser_id"
)

// CookieOptions はセッションクッキーの設定です。
type CookieOptions struct {
	Secret string
	MaxAge int
	Secure bool
}

// SessionMiddleware は署名付きクッキーのセッションミドルウェアを返します。
func SessionMiddleware(opts CookieOptions) gin.HandlerFunc {
	store := cookie.NewStore([]byte(opts.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		// フォームPOST後のリダイレクトでもクッキーを送れるように Lax
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionCookieName, store)
}

// StoreFactory はリクエスト（ブラウザ）ごとの session.Store を作ります。
type StoreFactory func(c *gin.Context) session.Store

// PersistenceFactory はリクエストごとの session.Persistence を作ります。
type PersistenceFactory func(c *gin.Context) session.Persistence

// CookiePersistence はセッション記録をクッキーそのものに保存します。
func CookiePersistence() PersistenceFactory {
	return func(c *gin.Context) session.Persistence {
		return session.NewCookiePersistence(sessions.Default(c))
	}
}

// RedisPersistence はセッション記録を Redis に保存し、クッキーにはブラウザIDだけを持たせます。
func RedisPersistence(rdb redis.Cmdable, logger *slog.Logger) PersistenceFactory {
	return func(c *gin.Context) session.Persistence {
		return session.NewRedisPersistence(rdb, browserID(c, logger))
	}
}

// LocalStores はクライアント側の記録を信頼する StoreFactory です。
func LocalStores(pf PersistenceFactory, logger *slog.Logger) StoreFactory {
	return func(c *gin.Context) session.Store {
		return session.NewLocalStore(pf(c), logger)
	}
}

// ProviderStores は毎回IdPにセッションを問い合わせる StoreFactory です。
func ProviderStores(pf PersistenceFactory, provider auth.IdentityProvider, logger *slog.Logger) StoreFactory {
	return func(c *gin.Context) session.Store {
		return session.NewProviderStore(pf(c), provider, logger)
	}
}

// browserID はクッキーに保存したブラウザIDを返します。なければ発行します。
func browserID(c *gin.Context, logger *slog.Logger) string {
	s := sessions.Default(c)
	if id, ok := s.Get(sessionKeyBrowser).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	s.Set(sessionKeyBrowser, id)
	if err := s.Save(); err != nil && logger != nil {
		logger.Warn("failed to save browser id", "error", err)
	}
	return id
}
