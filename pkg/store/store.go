package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imbecility/yt-keywords/pkg/models"
)

// ErrEmpty is returned when nothing has been recorded for the requested key.
var ErrEmpty = errors.New("no lookup recorded")

// LastLookupStore remembers the most recent lookup and the latest result per video.
type LastLookupStore interface {
	Save(ctx context.Context, res *models.KeywordResult) error
	Last(ctx context.Context) (*models.KeywordResult, error)
	Get(ctx context.Context, videoID string) (*models.KeywordResult, error)
}

// Open returns a Redis-backed store when redisURL is set and reachable,
// otherwise an in-memory one.
func Open(redisURL string, ttl time.Duration) LastLookupStore {
	if redisURL == "" {
		return NewMemoryStore(ttl)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("store: invalid redis URL, using memory", "err", err)
		return NewMemoryStore(ttl)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("store: redis unreachable, using memory", "err", err)
		_ = rdb.Close()
		return NewMemoryStore(ttl)
	}

	slog.Info("store: redis connected", "addr", opts.Addr)
	return NewRedisStore(rdb, ttl)
}
