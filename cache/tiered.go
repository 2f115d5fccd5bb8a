package cache

import (
	"context"
	"time"
)

// Tiered reads L1, then L2, then the loader. Writes go to both layers, L2
// first so an L1 hit always has a backing copy.
type Tiered struct {
	l1    *L1
	l2    *L2
	ttl1  time.Duration
	group loadGroup
}

// NewTiered layers l1 over l2. Values promoted from L2 stay in L1 for at
// most promoteTTL; zero keeps them until evicted.
func NewTiered(l1 *L1, l2 *L2, promoteTTL time.Duration) *Tiered {
	return &Tiered{l1: l1, l2: l2, ttl1: promoteTTL}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, err := t.l1.Get(ctx, key); err != nil || ok {
		return v, ok, err
	}
	v, ok, err := t.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = t.l1.Set(ctx, key, v, t.ttl1)
	return v, true, nil
}

func (t *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	_ = t.l2.Set(ctx, key, val, ttl)
	return t.l1.Set(ctx, key, val, ttl)
}

func (t *Tiered) GetOrSet(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if v, ok, _ := t.Get(ctx, key); ok {
		return v, nil
	}
	return t.group.do(ctx, key, load, func(v []byte) {
		_ = t.Set(ctx, key, v, ttl)
	})
}

// Ping checks the L2 connection. L1 is in-process and always reachable.
func (t *Tiered) Ping(ctx context.Context) error {
	return t.l2.Ping(ctx)
}
