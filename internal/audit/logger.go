package audit

import (
	"fmt"
	"log/slog"
	"os"
)

// asynqLogger は asynq のログを slog に流します。
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(l *slog.Logger) *asynqLogger {
	return &asynqLogger{logger: l.With("component", "asynq")}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }

func (l *asynqLogger) Info(args ...any) { l.logger.Info(fmt.Sprint(args...)) }

func (l *asynqLogger) Warn(args ...any) { l.logger.Warn(fmt.Sprint(args...)) }

func (l *asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }

func (l *asynqLogger) Fatal(args ...any) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
