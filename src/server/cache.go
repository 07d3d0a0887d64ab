package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// deckCache stores rendered decks in redis; a nil client turns it into a no-op.
type deckCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newDeckCache(client *redis.Client, ttl time.Duration) *deckCache {
	return &deckCache{client: client, ttl: ttl}
}

func (d *deckCache) get(ctx context.Context, key string) ([]byte, bool) {
	if d.client == nil {
		return nil, false
	}
	bytes, err := d.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.S().Warnf("redis get %s: %v", key, err)
		}
		return nil, false
	}
	return bytes, true
}

func (d *deckCache) set(ctx context.Context, key string, v interface{}) {
	if d.client == nil {
		return
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		zap.S().Warnf("marshalling %s for redis: %v", key, err)
		return
	}
	if err := d.client.Set(ctx, key, bytes, d.ttl).Err(); err != nil {
		zap.S().Warnf("redis set %s: %v", key, err)
	}
}
