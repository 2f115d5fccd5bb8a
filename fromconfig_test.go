package gorawrqueue

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/golang-jwt/jwt/v5"

	conf "github.com/Keksclan/goRawrQueue/config"
	"github.com/Keksclan/goRawrQueue/contextx"
	"github.com/Keksclan/goRawrQueue/echo"
)

const pipelineYAML = `
request_id: true
rate_limit:
  enabled: true
  rate: 1000
  burst: 1000
auth:
  enabled: true
  tokens:
    - token: s3cret
      subject: alice
policies:
  - name: public
    prefix: ["/public/"]
  - name: admin
    prefix: ["/admin/"]
    auth_required: true
cache:
  enabled: true
echo:
  message: hi
`

func serverFromYAML(t *testing.T, doc string) *Server {
	t.Helper()
	cfg, err := conf.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	return mustServer(t, opts...)
}

func TestFromConfigPipeline(t *testing.T) {
	s := serverFromYAML(t, pipelineYAML)

	public := s.Dispatch(httptest.NewRequest(http.MethodGet, "/public/info", nil))
	if public.Status() != http.StatusOK {
		t.Fatalf("public: %d", public.Status())
	}
	var r echo.Reply
	if err := json.Unmarshal(public.Body(), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Message != "hi" || r.RequestID == "" {
		t.Fatalf("reply %+v", r)
	}
	if public.HeaderLine(contextx.RequestIDHeader) != r.RequestID {
		t.Fatal("response header and body disagree on the request id")
	}

	if c := s.Dispatch(httptest.NewRequest(http.MethodGet, "/admin/users", nil)).Status(); c != http.StatusUnauthorized {
		t.Fatalf("admin without token: %d, want 401", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	if c := s.Dispatch(req).Status(); c != http.StatusOK {
		t.Fatalf("admin with token: %d, want 200", c)
	}

	if s.Cache() == nil {
		t.Fatal("cache not configured")
	}
}

func TestFromConfigJWTAuth(t *testing.T) {
	s := serverFromYAML(t, `
auth: {enabled: true, jwt_secret: k}
policies: [{name: admin, prefix: [/admin/], auth_required: true}]
`)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "bob",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	if c := s.Dispatch(req).Status(); c != http.StatusOK {
		t.Fatalf("valid JWT: %d, want 200", c)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok+"x")
	if c := s.Dispatch(req).Status(); c != http.StatusUnauthorized {
		t.Fatalf("tampered JWT: %d, want 401", c)
	}
}

func TestFromConfigIPBlockAllow(t *testing.T) {
	s := serverFromYAML(t, "ip_block: {enabled: true, mode: allow, cidrs: [10.0.0.0/8]}")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1000"
	if c := s.Dispatch(req).Status(); c != http.StatusForbidden {
		t.Fatalf("status %d, want 403", c)
	}
}

func TestFromConfigInvalidCIDR(t *testing.T) {
	cfg, err := conf.Parse([]byte("ip_block: {enabled: true, cidrs: [nope]}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := FromConfig(cfg, nil); err == nil {
		t.Fatal("expected error for an invalid CIDR")
	}
}
