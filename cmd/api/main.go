// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/form"
	"github.com/yourusername/authgate/internal/guard"
	"github.com/yourusername/authgate/internal/logger"
	"github.com/yourusername/authgate/internal/metrics"
	"github.com/yourusername/authgate/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定の読み込み（.env.local の LOG_* をロガーに反映させるため先に行う）
	cfg, err := config.Load()
	if err != nil {
		logger.Init().Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	router.Use(web.SessionMiddleware(web.CookieOptions{
		Secret: sessionSecret(cfg, log),
		MaxAge: cfg.SessionMaxAgeSeconds,
		Secure: cfg.GinMode == gin.ReleaseMode,
	}))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		"X-CSRF-Token", // CSRF保護用ヘッダー
	}
	// フロントエンドがレスポンスヘッダーから CSRF トークンを読み取れるように公開
	corsConfig.ExposeHeaders = []string{"X-CSRF-Token"}
	router.Use(cors.New(corsConfig))

	m := metrics.New()

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	backend, err := setupGateway(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	gateway := m.InstrumentGateway(backend.gateway)
	g := guard.New(guard.WithObserver(m), guard.WithLogger(log))

	deps := web.Deps{
		Gateway: gateway,
		Guard:   g,
		Form: form.NewController(gateway, g, form.Options{
			AutoLoginAfterSignup: cfg.AutoLoginAfterSignup,
			Logger:               log,
		}),
		Stores: setupStores(cfg, redisClient, backend.provider, log),
		Logger: log,
	}

	if cfg.AuditEnabled {
		manager, store, err := setupAudit(cfg, redisClient, log)
		if err != nil {
			return err
		}
		manager.StartWorkers()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := manager.Shutdown(shutdownCtx); err != nil {
				log.Warn("failed to shut down audit workers", "error", err)
			}
		}()
		deps.Recorder = manager
		deps.Activity = store
	}

	srv, err := web.NewServer(deps)
	if err != nil {
		return err
	}

	// ルーティングの設定
	router.GET("/health", handleHealth)
	router.GET("/metrics", gin.WrapH(m.Handler()))
	srv.Mount(router)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "addr", httpServer.Addr, "mode", cfg.GinMode,
			"auth", cfg.AuthStrategy, "session", cfg.SessionStrategy, "persistence", cfg.SessionPersistence)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "authgate-api",
		"version": "0.1.0",
	})
}

// sessionSecret はクッキー署名鍵を返します。
// 未設定の場合（開発時のみ許可）は起動ごとにランダムな鍵を使います。
func sessionSecret(cfg *config.Config, log *slog.Logger) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Error("failed to generate session secret", "error", err)
		os.Exit(1)
	}
	log.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	return hex.EncodeToString(buf)
}
