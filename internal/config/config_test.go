package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BOARDSYNC_TOKEN_SECRET", "secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("expected release mode, got %q", cfg.GinMode)
	}
	if cfg.TokenExpiry != 7*24*time.Hour {
		t.Fatalf("unexpected token expiry %v", cfg.TokenExpiry)
	}
	if cfg.FlushInterval != 5*time.Second {
		t.Fatalf("unexpected flush interval %v", cfg.FlushInterval)
	}
	if cfg.OpenProjects {
		t.Fatalf("open_projects should default to false")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BOARDSYNC_TOKEN_SECRET", "secret")
	t.Setenv("BOARDSYNC_PORT", "9000")
	t.Setenv("BOARDSYNC_GIN_MODE", "debug")
	t.Setenv("BOARDSYNC_FLUSH_INTERVAL", "30s")
	t.Setenv("BOARDSYNC_OPEN_PROJECTS", "true")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Fatalf("expected debug, got %q", cfg.GinMode)
	}
	if cfg.FlushInterval != 30*time.Second {
		t.Fatalf("expected 30s, got %v", cfg.FlushInterval)
	}
	if !cfg.OpenProjects {
		t.Fatalf("expected open_projects true")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 4321\ntoken_secret: from-file\nboard_db_path: /tmp/boards.db\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 4321 {
		t.Fatalf("expected port 4321, got %d", cfg.Port)
	}
	if cfg.TokenSecret != "from-file" {
		t.Fatalf("expected from-file, got %q", cfg.TokenSecret)
	}
	if cfg.BoardDBPath != "/tmp/boards.db" {
		t.Fatalf("unexpected db path %q", cfg.BoardDBPath)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("BOARDSYNC_TOKEN_SECRET", "")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for missing secret")
	}

	t.Setenv("BOARDSYNC_TOKEN_SECRET", "secret")
	t.Setenv("BOARDSYNC_PORT", "70000")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}
