package config

import (
	"testing"
	"time"

	"go.jacobcolvin.com/jsonmin/dispatch"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Mode != dispatch.Eco {
		t.Errorf("default mode = %v, want Eco", cfg.Mode)
	}
	if cfg.Deadline != 30*time.Second {
		t.Errorf("default deadline = %v, want 30s", cfg.Deadline)
	}
}

func TestNewAppliesOptionsOverEnv(t *testing.T) {
	t.Setenv("JSONMIN_WORKERS", "3")
	cfg := New(WithWorkers(7))
	if cfg.Workers != 7 {
		t.Errorf("Workers = %d, want 7 (explicit option should win over env)", cfg.Workers)
	}
}

func TestNewReadsEnvWhenNoExplicitOption(t *testing.T) {
	t.Setenv("JSONMIN_WORKERS", "5")
	cfg := New()
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5 from JSONMIN_WORKERS", cfg.Workers)
	}
}

func TestFromEnvIgnoresInvalidWorkers(t *testing.T) {
	t.Setenv("JSONMIN_WORKERS", "not-a-number")
	e := FromEnv()
	if e.workers != nil {
		t.Errorf("expected nil workers override for invalid input, got %v", *e.workers)
	}
}

func TestFromEnvNoSIMD(t *testing.T) {
	t.Setenv("JSONMIN_NO_SIMD", "1")
	e := FromEnv()
	if e.noSIMD == nil || !*e.noSIMD {
		t.Error("expected NoSIMD override to be set")
	}
}

func TestWithLenientAndMaxDepth(t *testing.T) {
	cfg := New(WithLenient(true), WithMaxDepth(16))
	if !cfg.Lenient {
		t.Error("expected Lenient=true")
	}
	if cfg.MaxDepth != 16 {
		t.Errorf("MaxDepth = %d, want 16", cfg.MaxDepth)
	}
}
