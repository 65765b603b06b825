package auth

import (
	"context"
	"sync"
)

// MemoryTable はプロセス内に資格情報を保持する CredentialTable です（開発・テスト用）。
// 一意制約は持たず、同じメールアドレスの行を複数保持できます。
type MemoryTable struct {
	mu      sync.RWMutex
	records []CredentialRecord
}

// NewMemoryTable は空の MemoryTable を作成します。
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{}
}

// FindByEmail は最初に追加された一致行を返します。
func (t *MemoryTable) FindByEmail(ctx context.Context, email string) (*CredentialRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.records {
		if r.Email == email {
			rec := r
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// Insert は行を追加します。
func (t *MemoryTable) Insert(ctx context.Context, record *CredentialRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, *record)
	return nil
}

// Len は保持している行数を返します。
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}
