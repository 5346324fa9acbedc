package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imbecility/yt-keywords/pkg/models"
)

const (
	lastKey        = "ytkw:last"
	videoKeyPrefix = "ytkw:video:"
)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore stores JSON values; ttl <= 0 means no expiry.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func videoKey(id string) string { return videoKeyPrefix + id }

func (s *RedisStore) Save(ctx context.Context, res *models.KeywordResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal lookup: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, lastKey, data, s.ttl)
	if res.VideoID != "" {
		pipe.Set(ctx, videoKey(res.VideoID), data, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (s *RedisStore) Last(ctx context.Context) (*models.KeywordResult, error) {
	return s.load(ctx, lastKey)
}

func (s *RedisStore) Get(ctx context.Context, videoID string) (*models.KeywordResult, error) {
	return s.load(ctx, videoKey(videoID))
}

func (s *RedisStore) load(ctx context.Context, key string) (*models.KeywordResult, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var res models.KeywordResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &res, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
