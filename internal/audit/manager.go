package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	taskTypeAuthEvent = "auth:event"
	queueName         = "audit"
)

// eventWriter はワーカーがイベントを書き込む先です。
type eventWriter interface {
	Append(ctx context.Context, event Event) error
}

// Manager はイベントのキュー投入とワーカーの起動を担います。
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	writer eventWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewManager は Manager を初期化します。redisURL は asynq のキューに使います。
func NewManager(redisURL string, writer eventWriter, logger *slog.Logger) (*Manager, error) {
	if writer == nil {
		return nil, errors.New("writer is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queueName: 1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	m := &Manager{
		client: asynq.NewClient(opt),
		server: server,
		mux:    asynq.NewServeMux(),
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
	m.mux.HandleFunc(taskTypeAuthEvent, m.handleEventTask)
	return m, nil
}

// StartWorkers は asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			m.logger.Error("asynq server stopped with error", "error", err)
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	return m.client.Close()
}

// Record はイベントをキューに投入します。失敗はログに残すだけで呼び出し元には返しません。
func (m *Manager) Record(ctx context.Context, event Event) {
	if _, err := m.Enqueue(ctx, event); err != nil {
		m.logger.Warn("failed to enqueue auth event", "kind", event.Kind, "error", err)
	}
}

// Enqueue はイベントをキューに投入し、タスクIDを返します。
func (m *Manager) Enqueue(ctx context.Context, event Event) (string, error) {
	task, err := m.newTask(event)
	if err != nil {
		return "", err
	}
	info, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (m *Manager) newTask(event Event) (*asynq.Task, error) {
	if event.Email == "" {
		return nil, fmt.Errorf("event email is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskTypeAuthEvent, body, asynq.Queue(queueName)), nil
}

func (m *Manager) handleEventTask(ctx context.Context, task *asynq.Task) error {
	var event Event
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		// 壊れたペイロードは再試行しても直らない
		return fmt.Errorf("decode auth event: %v: %w", err, asynq.SkipRetry)
	}
	if event.Email == "" {
		return fmt.Errorf("missing email in payload: %w", asynq.SkipRetry)
	}
	return m.writer.Append(ctx, event)
}
