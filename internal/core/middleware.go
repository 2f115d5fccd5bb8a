package core

import (
	"cmp"
	"slices"

	"github.com/Keksclan/goRawrQueue/pipeline"
)

// entry is one middleware with its position in the chain. Lower Order
// values are enqueued first.
type entry struct {
	mw    pipeline.Middleware
	order int
}

// MiddlewareBuilder collects middleware entries and produces the ordered
// list a pipeline handler is built from.
type MiddlewareBuilder struct {
	entries []entry
}

// Add registers mw at the given order. A nil mw is ignored.
func (b *MiddlewareBuilder) Add(order int, mw pipeline.Middleware) {
	if mw == nil {
		return
	}
	b.entries = append(b.entries, entry{mw: mw, order: order})
}

// Len returns the number of registered entries.
func (b *MiddlewareBuilder) Len() int { return len(b.entries) }

// Build returns the middleware sorted by order. Entries with equal order
// keep their registration order. The builder is left untouched, so Build
// may be called again.
func (b *MiddlewareBuilder) Build() []pipeline.Middleware {
	sorted := slices.Clone(b.entries)
	slices.SortStableFunc(sorted, func(a, c entry) int {
		return cmp.Compare(a.order, c.order)
	})
	out := make([]pipeline.Middleware, len(sorted))
	for i, e := range sorted {
		out[i] = e.mw
	}
	return out
}
