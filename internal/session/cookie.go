package session

import (
	"context"

	"github.com/gin-contrib/sessions"
)

// CookiePersistence は署名付きクッキーセッションを Persistence として使います。
// 値はクライアント側に保持されます。
type CookiePersistence struct {
	session sessions.Session
}

// NewCookiePersistence は CookiePersistence を作成します。
func NewCookiePersistence(s sessions.Session) *CookiePersistence {
	return &CookiePersistence{session: s}
}

func (p *CookiePersistence) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok := p.session.Get(key).(string)
	return v, ok, nil
}

func (p *CookiePersistence) SetItem(ctx context.Context, key, value string) error {
	p.session.Set(key, value)
	return p.session.Save()
}

func (p *CookiePersistence) RemoveItem(ctx context.Context, key string) error {
	p.session.Delete(key)
	return p.session.Save()
}
