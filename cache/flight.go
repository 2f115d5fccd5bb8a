package cache

import (
	"bytes"
	"context"
	"sync"
)

// flight is one in-progress load.
type flight struct {
	done chan struct{}
	val  []byte
	err  error
}

// loadGroup collapses concurrent loads of the same key into one call.
type loadGroup struct {
	mu      sync.Mutex
	flights map[string]*flight
}

// do runs load for key unless a load is already running, in which case it
// waits for that one. store is called with the loaded value before waiters
// are released.
func (g *loadGroup) do(ctx context.Context, key string, load Loader, store func([]byte)) ([]byte, error) {
	g.mu.Lock()
	if f, ok := g.flights[key]; ok {
		g.mu.Unlock()
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if f.err != nil {
			return nil, f.err
		}
		return bytes.Clone(f.val), nil
	}
	if g.flights == nil {
		g.flights = make(map[string]*flight)
	}
	f := &flight{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.flights, key)
		g.mu.Unlock()
		close(f.done)
	}()

	f.val, f.err = load(ctx)
	if f.err != nil {
		return nil, f.err
	}
	store(f.val)
	return bytes.Clone(f.val), nil
}
