// Package logger は log/slog の初期設定を提供します。
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init は環境変数に従ってデフォルトの slog ロガーを設定し、それを返します。
// LOG_LEVEL: debug, info, warn, error (default: info)
// LOG_FORMAT: text, json (default: text)
func Init() *slog.Logger {
	return New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// New は指定したレベルと形式でデフォルトの slog ロガーを設定し、それを返します。
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
