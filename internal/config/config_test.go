package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:5000/api" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.APITimeout)
	}
	if cfg.StorageType != "bbolt" || cfg.StorageTTL != 30*24*time.Hour {
		t.Fatalf("unexpected storage config %+v", cfg)
	}
	if cfg.PublishersFile != "" {
		t.Fatalf("publishers should be disabled by default, got %q", cfg.PublishersFile)
	}
}

func TestLoadTimeoutFromEnv(t *testing.T) {
	t.Setenv("API_TIMEOUT_MS", "5000")
	t.Setenv("API_BASE_URL", "http://backend.local:8080/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APITimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.APITimeout)
	}
	if cfg.APIBaseURL != "http://backend.local:8080/api" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"API_TIMEOUT_MS":      "0",
		"API_BASE_URL":        "not a url",
		"STORAGE_TTL_SECONDS": "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
