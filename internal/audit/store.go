package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const eventKeyPrefix = "auth:events:"

// listKV は Store が使う go-redis のリスト操作です。
type listKV interface {
	LPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Store はユーザーごとの直近イベントを Redis のリストに保存します。
type Store struct {
	rdb       listKV
	retention int64
}

// NewStore は Store を作成します。retention はユーザーごとに保持する件数です。
func NewStore(rdb listKV, retention int) *Store {
	if retention <= 0 {
		retention = 20
	}
	return &Store{rdb: rdb, retention: int64(retention)}
}

// Append はイベントを先頭に追加し、保持件数を超えた古いものを削除します。
func (s *Store) Append(ctx context.Context, event Event) error {
	if event.Email == "" {
		return fmt.Errorf("event email is required")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := eventKey(event.Email)
	if err := s.rdb.LPush(ctx, key, payload).Err(); err != nil {
		return err
	}
	return s.rdb.LTrim(ctx, key, 0, s.retention-1).Err()
}

// Recent は新しい順に最大 limit 件のイベントを返します。
// 解析できない要素は読み飛ばします。
func (s *Store) Recent(ctx context.Context, email string, limit int) ([]Event, error) {
	if email == "" {
		return nil, nil
	}
	if limit <= 0 || int64(limit) > s.retention {
		limit = int(s.retention)
	}
	items, err := s.rdb.LRange(ctx, eventKey(email), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for _, item := range items {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func eventKey(email string) string {
	return eventKeyPrefix + email
}
