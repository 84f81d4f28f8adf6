package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_BACKEND", "STORE_URL", "ROLL_FRAMES", "ROLL_INTERVAL_MS", "COMPUTER_DELAY_MS", "DEFAULT_TARGET_SCORE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %q; want 8080", cfg.AppPort)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Fatalf("StoreBackend = %q; want memory", cfg.StoreBackend)
	}
	if cfg.RollFrames != 11 || cfg.RollInterval != 100*time.Millisecond {
		t.Fatalf("unexpected roll pacing: %d frames every %s", cfg.RollFrames, cfg.RollInterval)
	}
	if cfg.ComputerDelay != 1500*time.Millisecond {
		t.Fatalf("ComputerDelay = %s; want 1.5s", cfg.ComputerDelay)
	}
	if cfg.DefaultTargetScore != 50 {
		t.Fatalf("DefaultTargetScore = %d; want 50", cfg.DefaultTargetScore)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "REMOTE")
	t.Setenv("STORE_URL", "http://store.local:9000/")
	t.Setenv("ROLL_FRAMES", "3")
	t.Setenv("COMPUTER_DELAY_MS", "-5")
	t.Setenv("WRITE_RATE_WINDOW", "10")

	cfg := Load()
	if cfg.StoreBackend != BackendRemote {
		t.Fatalf("StoreBackend = %q; want remote", cfg.StoreBackend)
	}
	if cfg.StoreURL != "http://store.local:9000" {
		t.Fatalf("StoreURL = %q", cfg.StoreURL)
	}
	if cfg.RollFrames != 3 {
		t.Fatalf("RollFrames = %d; want 3", cfg.RollFrames)
	}
	if cfg.ComputerDelay != 1500*time.Millisecond {
		t.Fatalf("negative delay should fall back to default, got %s", cfg.ComputerDelay)
	}
	if cfg.WriteWindow() != 10*time.Second {
		t.Fatalf("WriteWindow = %s; want 10s", cfg.WriteWindow())
	}
}

func TestLoadTargetScore(t *testing.T) {
	cases := map[string]int{
		"100": 100,
		"20":  20,
		"7":   50,
		"999": 50,
		"abc": 50,
	}
	t.Setenv("STORE_BACKEND", "")
	for raw, want := range cases {
		t.Setenv("DEFAULT_TARGET_SCORE", raw)
		if got := Load().DefaultTargetScore; got != want {
			t.Errorf("DEFAULT_TARGET_SCORE=%s: got %d; want %d", raw, got, want)
		}
	}
}
