package echo_test

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/echo"
	"github.com/Keksclan/goRawrQueue/pipeline"
)

func TestStatic(t *testing.T) {
	resp := pipeline.Run(httptest.NewRequest(http.MethodGet, "/healthz", nil), echo.Static(http.StatusOK, "ok"))
	if resp.Status() != http.StatusOK || string(resp.Body()) != "ok" {
		t.Fatalf("got %d %q", resp.Status(), resp.Body())
	}
}

func TestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/hello", nil)
	req = req.WithContext(contextx.WithRequestID(req.Context(), "rid-1"))

	before := time.Now().Unix()
	resp := pipeline.Run(req, echo.JSON("hi"))

	if ct := resp.HeaderLine("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cc := resp.HeaderLine("Cache-Control"); cc != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", cc)
	}
	var r echo.Reply
	if err := json.Unmarshal(resp.Body(), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Message != "hi" || r.Method != http.MethodPost || r.Path != "/hello" || r.RequestID != "rid-1" {
		t.Fatalf("unexpected reply %+v", r)
	}
	if r.ServerTimeUnix < before {
		t.Fatalf("server time %d before request start %d", r.ServerTimeUnix, before)
	}
}

func TestJSONIsTerminal(t *testing.T) {
	h := pipeline.NewHandler([]pipeline.Middleware{echo.JSON("x"), echo.Static(http.StatusTeapot, "")})
	resp := h.Handle(nil)
	if resp.Status() != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.Status())
	}
	if h.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", h.Pending())
	}
}

func TestFunReplacesSomeMessages(t *testing.T) {
	mw := echo.Fun("plain", rand.NewSource(42))

	var plain, fun int
	for range 200 {
		var r echo.Reply
		resp := pipeline.Run(httptest.NewRequest(http.MethodGet, "/", nil), mw)
		if err := json.Unmarshal(resp.Body(), &r); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if r.Message == "plain" {
			plain++
		} else {
			fun++
		}
	}
	if plain == 0 || fun == 0 {
		t.Fatalf("expected a mix of messages, got plain=%d fun=%d", plain, fun)
	}
}
