package infra

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPServerCoversGenerationTimeout(t *testing.T) {
	cfg := &Config{Port: "5000", HTTPWriteTimeout: 30 * time.Second, GenerationTimeout: 120 * time.Second}
	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	if srv.Addr() != ":5000" {
		t.Fatalf("Addr = %q", srv.Addr())
	}
	if got := srv.server.WriteTimeout; got != 130*time.Second {
		t.Fatalf("WriteTimeout = %s, want 130s", got)
	}

	cfg.HTTPWriteTimeout = 10 * time.Minute
	if got := NewHTTPServer(cfg, http.NotFoundHandler()).server.WriteTimeout; got != 10*time.Minute {
		t.Fatalf("WriteTimeout = %s, want configured value", got)
	}
}
