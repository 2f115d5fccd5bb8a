package interceptors

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/goRawrQueue/auth"
	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/pipeline"
	"github.com/Keksclan/goRawrQueue/policy"
)

func TestAuth_ForwardsAuthenticatedRequest(t *testing.T) {
	fn := auth.StaticTokens(map[string]contextx.Actor{"s3cret": {Subject: "alice"}})
	a := newApp(http.StatusOK, "ok")

	req := get("/me")
	req.Header.Set("Authorization", "Bearer s3cret")
	if s := pipeline.Run(req, Auth(fn, nil), a).Status(); s != http.StatusOK {
		t.Fatalf("status %d, want 200", s)
	}
	actor, ok := contextx.ActorFromContext(a.last.Load().Context())
	if !ok || actor.Subject != "alice" {
		t.Fatalf("actor = %+v, %v; want alice", actor, ok)
	}
}

func TestAuth_Statuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("nope"), http.StatusUnauthorized},
		{"sentinel", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"grpc status kept", status.Error(codes.PermissionDenied, "admins only"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := func(*http.Request) (*http.Request, error) { return nil, tt.err }
			a := newApp(http.StatusOK, "ok")
			resp := pipeline.Run(get("/"), Auth(fn, nil), a)
			if resp.Status() != tt.want {
				t.Fatalf("status %d, want %d", resp.Status(), tt.want)
			}
			if a.calls.Load() != 0 {
				t.Fatal("app must not run after an auth failure")
			}
		})
	}
}

func TestAuth_PolicySkipsPublicGroups(t *testing.T) {
	resolver := policy.NewResolver(
		policy.Group("public").Prefix("/public/"),
		policy.Group("admin").Prefix("/admin/").Policy(policy.Policy{AuthRequired: true}),
	)
	var calls int
	fn := func(r *http.Request) (*http.Request, error) {
		calls++
		return nil, auth.ErrMissingToken
	}
	mw := Auth(fn, resolver)
	a := newApp(http.StatusOK, "ok")

	if s := pipeline.Run(get("/public/docs"), mw, a).Status(); s != http.StatusOK {
		t.Fatalf("public: status %d, want 200", s)
	}
	if s := pipeline.Run(get("/admin/users"), mw, a).Status(); s != http.StatusUnauthorized {
		t.Fatalf("admin: status %d, want 401", s)
	}
	if s := pipeline.Run(get("/elsewhere"), mw, a).Status(); s != http.StatusUnauthorized {
		t.Fatalf("unmatched: status %d, want 401", s)
	}
	if calls != 2 {
		t.Fatalf("auth func called %d times, want 2", calls)
	}
}

func TestAuth_NilRequestFromFuncKeepsOriginal(t *testing.T) {
	fn := func(*http.Request) (*http.Request, error) { return nil, nil }
	a := newApp(http.StatusOK, "ok")
	req := get("/")
	pipeline.Run(req, Auth(fn, nil), a)
	if a.last.Load() != req {
		t.Fatal("expected the original request to be forwarded")
	}
}
