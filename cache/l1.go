package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// L1 is an in-process cache backed by ristretto. Each entry costs its
// encoded size in bytes.
type L1 struct {
	rc    *ristretto.Cache[string, []byte]
	group loadGroup
}

// NewL1 returns an L1 holding at most maxBytes of values.
func NewL1(maxBytes int64) (*L1, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxBytes/10, 1000),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &L1{rc: rc}, nil
}

func (l *L1) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.rc.Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (l *L1) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	l.rc.SetWithTTL(key, bytes.Clone(val), int64(len(val))+1, ttl)
	l.rc.Wait()
	return nil
}

func (l *L1) GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if v, ok, _ := l.Get(ctx, key); ok {
		return v, nil
	}
	return l.group.do(ctx, key, load, func(v []byte) {
		_ = l.Set(ctx, key, v, ttl)
	})
}

// Close stops ristretto's background goroutines.
func (l *L1) Close() {
	l.rc.Close()
}
