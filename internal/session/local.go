package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/yourusername/authgate/internal/auth"
)

// LocalStore は Session を Persistence にJSONで保存します。
// 有効期限は持たず、Clear されるまで保持されます。
type LocalStore struct {
	persistence Persistence
	logger      *slog.Logger
}

// NewLocalStore は LocalStore を作成します。
func NewLocalStore(p Persistence, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{persistence: p, logger: logger}
}

// Create は Store を実装します。
func (s *LocalStore) Create(ctx context.Context, identity auth.Identity) error {
	payload, err := json.Marshal(Session{
		Email:         identity.Email,
		Authenticated: true,
		AccessToken:   identity.AccessToken,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.persistence.SetItem(ctx, StorageKey, string(payload)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Read は Store を実装します。読み出しや解析に失敗した場合、
// または loggedIn が true でない場合は未ログインとして扱います。
func (s *LocalStore) Read(ctx context.Context) (*Session, bool) {
	raw, ok, err := s.persistence.GetItem(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("session read failed", "error", err)
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.logger.Warn("discarding corrupt session", "error", err)
		return nil, false
	}
	// null や {} のように解析できても認証済みでない記録は存在しないものとする
	if !sess.Valid() {
		return nil, false
	}
	return &sess, true
}

// Clear は Store を実装します。
func (s *LocalStore) Clear(ctx context.Context) error {
	if err := s.persistence.RemoveItem(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
