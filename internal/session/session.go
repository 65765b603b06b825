// Package session はブラウザ単位の認証状態（Session）の保存と読み出しを扱います。
package session

import (
	"context"

	"github.com/yourusername/authgate/internal/auth"
)

// StorageKey は永続化層上で Session を保存するキーです。
const StorageKey = "user_session"

// Session は「このブラウザはユーザー X として認証済み」という記録です。
type Session struct {
	Email         string `json:"email"`
	Authenticated bool   `json:"loggedIn"`
	// AccessToken はIdP方式でログインした場合のみ保持します。
	AccessToken string `json:"accessToken,omitempty"`
}

// Valid は認証済みとして扱える Session かどうかを返します。
func (s *Session) Valid() bool {
	return s != nil && s.Authenticated
}

// Store は Session のリポジトリです。Form Controller と Route Guard に注入されます。
type Store interface {
	// Create は既存の Session を上書きして認証済みの Session を保存します。
	Create(ctx context.Context, identity auth.Identity) error
	// Read は Session を返します。未作成・破損・削除済みの場合は false を返し、エラーにはしません。
	Read(ctx context.Context) (*Session, bool)
	// Clear は Session を削除します。
	Clear(ctx context.Context) error
}

// Persistence はブラウザ単位の文字列キー・値ストレージです。
type Persistence interface {
	// GetItem は値を返します。キーが存在しない場合は ok=false で err=nil です。
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
