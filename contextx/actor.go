package contextx

import (
	"context"
	"slices"
)

// Actor is the authenticated identity behind a request. The auth middleware
// stores it via [WithActor]; downstream middleware read it with
// [ActorFromContext].
//
//	actor := contextx.Actor{Subject: "alice", Scopes: []string{"read"}}
//	r = r.WithContext(contextx.WithActor(r.Context(), actor))
type Actor struct {
	Subject  string
	Tenant   string
	ClientID string
	Scopes   []string
}

// HasScope reports whether the actor was granted scope.
func (a Actor) HasScope(scope string) bool {
	return slices.Contains(a.Scopes, scope)
}

// WithActor returns a derived context that carries a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the Actor stored in ctx and whether one was set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}
