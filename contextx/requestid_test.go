package contextx

import "testing"

func TestRequestIDRoundTrip(t *testing.T) {
	if got := RequestIDFromContext(WithRequestID(t.Context(), "req-abc-123")); got != "req-abc-123" {
		t.Fatalf("got %q, want %q", got, "req-abc-123")
	}
	if got := RequestIDFromContext(t.Context()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
