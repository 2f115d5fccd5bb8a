package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(path, []byte("listen: \":1\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Config, 4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := watch(t.Context(), path, 20*time.Millisecond, logger, func(c *Config) { got <- c }); err != nil {
		t.Fatalf("watch: %v", err)
	}

	// An invalid document is skipped.
	if err := os.WriteFile(path, []byte("logging: {level: loud}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-got:
		t.Fatalf("invalid config delivered: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("listen: \":2\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-got:
		if c.Listen != ":2" {
			t.Fatalf("reloaded listen = %q, want :2", c.Listen)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after a valid write")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Config, 1)
	if err := watch(t.Context(), path, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)), func(c *Config) { got <- c }); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("listen: x"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-got:
		t.Fatal("reload triggered by an unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(t.Context(), filepath.Join(t.TempDir(), "nope", "pipeline.yaml"), nil, func(*Config) {})
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}
