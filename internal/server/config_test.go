package server_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GreenHouse007/world-builder/internal/server"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := server.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr == "" || cfg.DSN == "" || cfg.LogLevel == "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "addr: \":9999\"\ndsn: \"memory://\"\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := server.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9999" || cfg.DSN != "memory://" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AuthSecret != "" {
		t.Fatalf("auth secret should default empty, got %q", cfg.AuthSecret)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":::not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := server.LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
