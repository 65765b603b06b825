// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 認証方式（Auth Gateway の実装切り替え）
const (
	AuthStrategyProvider = "provider" // 外部IdPのパスワード認証に委譲
	AuthStrategyTable    = "table"    // アプリ管理のテーブル + bcrypt
)

// セッション検証方式
const (
	SessionStrategyLocal    = "local"    // ブラウザ側に保持した記録を信頼
	SessionStrategyProvider = "provider" // 毎回IdPのセッションを問い合わせる
)

// セッション記録の保存先
const (
	PersistenceCookie = "cookie"
	PersistenceRedis  = "redis"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// ログ設定
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// セッション設定
	SessionSecret        string // セッション署名用の秘密鍵
	SessionMaxAgeSeconds int    // セッションCookieの寿命（秒）
	SessionStrategy      string // local / provider
	SessionPersistence   string // cookie / redis

	// 認証設定
	AuthStrategy         string // provider / table
	AutoLoginAfterSignup bool   // サインアップ成功時にそのままログインさせるか
	BcryptCost           int    // table方式で使うbcryptコスト

	// IdP設定（provider方式）
	ProviderURL            string // GoTrue互換エンドポイントのベースURL
	ProviderAnonKey        string // apikey ヘッダーに載せる公開キー
	ProviderJWTSecret      string // アクセストークンをローカル検証する場合の署名鍵
	ProviderTimeoutSeconds int    // IdP呼び出しのタイムアウト（秒）

	// データベース設定（table方式）
	DatabaseURL string // PostgreSQL接続URL（空ならインメモリ）

	// Redis設定
	RedisURL       string // セッション保存・アクティビティログ用Redis接続URL
	AuditEnabled   bool   // 認証アクティビティログを有効にするか
	AuditRetention int    // ユーザーごとに保持するイベント数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// ログ設定
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// セッション設定
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionMaxAgeSeconds: getEnvAsInt("SESSION_MAX_AGE_SECONDS", 30*24*60*60), // 30日
		SessionStrategy:      strings.ToLower(getEnv("SESSION_STRATEGY", SessionStrategyLocal)),
		SessionPersistence:   strings.ToLower(getEnv("SESSION_PERSISTENCE", PersistenceCookie)),

		// 認証設定
		AuthStrategy:         strings.ToLower(getEnv("AUTH_STRATEGY", AuthStrategyTable)),
		AutoLoginAfterSignup: getEnvAsBool("AUTO_LOGIN_AFTER_SIGNUP", false),
		BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),

		// IdP設定
		ProviderURL:            getEnv("PROVIDER_URL", ""),
		ProviderAnonKey:        getEnv("PROVIDER_ANON_KEY", ""),
		ProviderJWTSecret:      getEnv("PROVIDER_JWT_SECRET", ""),
		ProviderTimeoutSeconds: getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 10),

		// データベース設定
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis設定
		RedisURL:       getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		AuditEnabled:   getEnvAsBool("AUDIT_ENABLED", false),
		AuditRetention: getEnvAsInt("AUDIT_RETENTION", 20),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.AuthStrategy {
	case AuthStrategyProvider:
		if c.ProviderURL == "" {
			return fmt.Errorf("PROVIDER_URL is required when AUTH_STRATEGY=%s", AuthStrategyProvider)
		}
		if c.ProviderAnonKey == "" {
			return fmt.Errorf("PROVIDER_ANON_KEY is required when AUTH_STRATEGY=%s", AuthStrategyProvider)
		}
	case AuthStrategyTable:
	default:
		return fmt.Errorf("unknown AUTH_STRATEGY: %q", c.AuthStrategy)
	}

	switch c.SessionStrategy {
	case SessionStrategyLocal:
	case SessionStrategyProvider:
		// IdPのセッションはIdPでログインした場合にしか存在しない
		if c.AuthStrategy != AuthStrategyProvider {
			return fmt.Errorf("SESSION_STRATEGY=%s requires AUTH_STRATEGY=%s", SessionStrategyProvider, AuthStrategyProvider)
		}
	default:
		return fmt.Errorf("unknown SESSION_STRATEGY: %q", c.SessionStrategy)
	}

	switch c.SessionPersistence {
	case PersistenceCookie:
	case PersistenceRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_PERSISTENCE=%s", PersistenceRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_PERSISTENCE: %q", c.SessionPersistence)
	}

	if c.AuditEnabled && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when AUDIT_ENABLED=true")
	}

	// ローカル開発では秘密鍵やDBは任意
	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.AuthStrategy == AuthStrategyTable && c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in release mode")
		}
	}

	return nil
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
