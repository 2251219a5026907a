package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pipeline.BatchQuota != 25 {
		t.Errorf("Expected default batch quota 25, got %d", cfg.Pipeline.BatchQuota)
	}
	if cfg.Database.Path != "chartmood.db" {
		t.Errorf("Expected default database path, got %q", cfg.Database.Path)
	}
	if cfg.Survey.BaseURL == "" {
		t.Error("Expected a default survey base URL")
	}
}

func TestLoad_IsCached(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if first != second {
		t.Error("Load should return the cached config")
	}
}

func TestParseTimeout(t *testing.T) {
	if got := ParseTimeout("15s", time.Minute); got != 15*time.Second {
		t.Errorf("Expected 15s, got %v", got)
	}
	if got := ParseTimeout("", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback for empty value, got %v", got)
	}
	if got := ParseTimeout("garbage", time.Minute); got != time.Minute {
		t.Errorf("Expected fallback for garbage value, got %v", got)
	}
}
