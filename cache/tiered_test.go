package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// With Redis unreachable a Tiered cache degrades to its L1.
func TestTiered_UnreachableL2(t *testing.T) {
	l2 := NewL2(L2Options{Addr: "localhost:1"})
	t.Cleanup(func() { _ = l2.Close() })
	tc := NewTiered(mustNewL1(t), l2, 0)

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	var calls atomic.Int32
	loader := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("body"), nil
	}

	for i := range 3 {
		v, err := tc.GetOrSet(ctx, "k", time.Minute, loader)
		if err != nil {
			t.Fatalf("GetOrSet %d: %v", i, err)
		}
		if string(v) != "body" {
			t.Fatalf("got %q, want %q", v, "body")
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
}

func TestTiered_PingReportsL2(t *testing.T) {
	l2 := NewL2(L2Options{Addr: "localhost:1"})
	t.Cleanup(func() { _ = l2.Close() })
	tc := NewTiered(mustNewL1(t), l2, 0)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	if err := tc.Ping(ctx); err == nil {
		t.Fatal("expected ping error for unreachable Redis")
	}
}
