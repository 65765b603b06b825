package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKV は RedisPersistence が使う go-redis のコマンドです。
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisPersistence はブラウザIDごとの名前空間で Redis に保存する Persistence です。
// キーに有効期限は設定しません。
type RedisPersistence struct {
	rdb       redisKV
	browserID string
}

// NewRedisPersistence は RedisPersistence を作成します。
func NewRedisPersistence(rdb redisKV, browserID string) *RedisPersistence {
	return &RedisPersistence{rdb: rdb, browserID: browserID}
}

// RedisKey は保存先のキー名を返します。
func RedisKey(browserID, key string) string {
	return fmt.Sprintf("browser:%s:%s", browserID, key)
}

func (p *RedisPersistence) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := p.rdb.Get(ctx, RedisKey(p.browserID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (p *RedisPersistence) SetItem(ctx context.Context, key, value string) error {
	return p.rdb.Set(ctx, RedisKey(p.browserID, key), value, 0).Err()
}

func (p *RedisPersistence) RemoveItem(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, RedisKey(p.browserID, key)).Err()
}
