package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// L2 is a Redis cache layer. It fails soft: an unreachable server reads as
// a miss and writes are dropped, so a Redis outage only costs hit rate.
type L2 struct {
	rdb    *redis.Client
	prefix string
	logger *slog.Logger
	group  loadGroup
}

// L2Options configures NewL2.
type L2Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
	Logger *slog.Logger
}

func NewL2(o L2Options) *L2 {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &L2{
		rdb: redis.NewClient(&redis.Options{
			Addr:     o.Addr,
			Password: o.Password,
			DB:       o.DB,
		}),
		prefix: o.Prefix,
		logger: logger,
	}
}

func (l *L2) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := l.rdb.Get(ctx, l.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		l.logger.DebugContext(ctx, "redis cache read failed", "key", key, "error", err)
		return nil, false, nil
	}
	return val, true, nil
}

func (l *L2) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := l.rdb.Set(ctx, l.prefix+key, val, ttl).Err(); err != nil {
		l.logger.DebugContext(ctx, "redis cache write failed", "key", key, "error", err)
	}
	return nil
}

// GetOrSet on L2 alone does not deduplicate across processes, only within
// this one.
func (l *L2) GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if v, ok, _ := l.Get(ctx, key); ok {
		return v, nil
	}
	return l.group.do(ctx, key, load, func(v []byte) {
		_ = l.Set(ctx, key, v, ttl)
	})
}

func (l *L2) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}

func (l *L2) Close() error {
	return l.rdb.Close()
}
