package gorawrqueue

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Keksclan/goRawrQueue/echo"
	"github.com/Keksclan/goRawrQueue/security"
)

func serveWithBlocker(t *testing.T, cfg security.Config) *httptest.Server {
	t.Helper()
	blocker, err := security.NewIPBlocker(cfg)
	if err != nil {
		t.Fatalf("NewIPBlocker: %v", err)
	}
	srv := mustServer(t, WithIPBlocker(blocker), WithTerminal(echo.Static(http.StatusOK, "hello")))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestIPBlockIntegrationBlockedReturnsForbidden(t *testing.T) {
	// Loopback clients are outside the allow list.
	ts := serveWithBlocker(t, security.Config{
		Mode:  security.AllowList,
		CIDRs: []string{"192.168.0.0/16"},
	})

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status %d, want 403", resp.StatusCode)
	}
	if w := resp.Header.Get("Warning"); w != "Error 403 in ipblock" {
		t.Fatalf("Warning %q", w)
	}
}

func TestIPBlockIntegrationAllowedPasses(t *testing.T) {
	ts := serveWithBlocker(t, security.Config{
		Mode:  security.AllowList,
		CIDRs: []string{"127.0.0.0/8", "::1"},
	})

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(body) != "hello" {
		t.Fatalf("got %d %q", resp.StatusCode, body)
	}
}

func TestIPBlockIntegrationTrustedProxyHeader(t *testing.T) {
	ts := serveWithBlocker(t, security.Config{
		Mode:           security.DenyList,
		CIDRs:          []string{"203.0.113.0/24"},
		TrustedProxies: []string{"127.0.0.0/8", "::1"},
	})

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status %d, want 403", resp.StatusCode)
	}
}
