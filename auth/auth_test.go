package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Keksclan/goRawrQueue/auth"
	"github.com/Keksclan/goRawrQueue/contextx"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  xyz ", "xyz", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, ok := auth.BearerToken(r)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStaticTokens(t *testing.T) {
	fn := auth.StaticTokens(map[string]contextx.Actor{
		"valid-token": {Subject: "alice"},
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := fn(r); !errors.Is(err, auth.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	r.Header.Set("Authorization", "Bearer nope")
	if _, err := fn(r); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	r.Header.Set("Authorization", "Bearer valid-token")
	out, err := fn(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, ok := contextx.ActorFromContext(out.Context())
	if !ok || a.Subject != "alice" {
		t.Fatalf("expected actor alice, got %+v (present=%v)", a, ok)
	}
}
