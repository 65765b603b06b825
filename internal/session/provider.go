package session

import (
	"context"
	"log/slog"

	"github.com/yourusername/authgate/internal/auth"
)

// ProviderStore は Read のたびにIdPへ問い合わせてセッションの有効性を確認します。
// ローカルにはアクセストークンのみを保持し、IdP側で失効したセッションは未ログインになります。
type ProviderStore struct {
	local    *LocalStore
	provider auth.IdentityProvider
	logger   *slog.Logger
}

// NewProviderStore は ProviderStore を作成します。
func NewProviderStore(p Persistence, provider auth.IdentityProvider, logger *slog.Logger) *ProviderStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderStore{
		local:    NewLocalStore(p, logger),
		provider: provider,
		logger:   logger,
	}
}

// Create は Store を実装します。
func (s *ProviderStore) Create(ctx context.Context, identity auth.Identity) error {
	return s.local.Create(ctx, identity)
}

// Read は Store を実装します。
func (s *ProviderStore) Read(ctx context.Context) (*Session, bool) {
	stored, ok := s.local.Read(ctx)
	if !ok || stored.AccessToken == "" {
		return nil, false
	}

	live, err := s.provider.GetSession(ctx, stored.AccessToken)
	if err != nil {
		s.logger.Info("provider session rejected", "error", err)
		return nil, false
	}
	if live == nil {
		return nil, false
	}

	sess := &Session{Authenticated: true, AccessToken: live.AccessToken}
	if sess.AccessToken == "" {
		sess.AccessToken = stored.AccessToken
	}
	if live.User != nil {
		sess.Email = live.User.Email
	}
	return sess, true
}

// Clear は Store を実装します。
func (s *ProviderStore) Clear(ctx context.Context) error {
	return s.local.Clear(ctx)
}
