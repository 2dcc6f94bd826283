package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowtap/internal/stream"
)

func validConfig() Config {
	return Config{
		Version: 1,
		Engine: EngineConfig{
			BaseURL:        "http://localhost:8787",
			TimeoutSeconds: 120,
		},
		Database: DatabaseConfig{Path: ".flowtap/history.duckdb"},
		Stream:   StreamConfig{Gating: string(stream.GatingIndependent), ReadBuffer: 4096, RecordingsDir: ".flowtap/recordings"},
		UI:       UIConfig{TickIntervalMs: 200},
		Server:   ServerConfig{Addr: "127.0.0.1:8844"},
	}
}

func TestParseConfigStrictFields(t *testing.T) {
	_, err := ParseConfig([]byte("version: 1\nengin:\n  base_url: http://x\n"))
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if !strings.Contains(err.Error(), "engin") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestParseConfigRejectsMultipleDocuments(t *testing.T) {
	_, err := ParseConfig([]byte("version: 1\n---\nversion: 2\n"))
	if err == nil || !strings.Contains(err.Error(), "multiple YAML documents") {
		t.Fatalf("expected multiple document error, got %v", err)
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := Config{Version: 1, Engine: EngineConfig{BaseURL: "http://localhost:8787"}}

	Normalize(&cfg)

	if cfg.Engine.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Fatalf("expected default timeout, got %d", cfg.Engine.TimeoutSeconds)
	}
	if cfg.Database.Path != DefaultDBPath {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
	if cfg.Stream.Gating != string(stream.GatingIndependent) {
		t.Fatalf("expected independent gating, got %q", cfg.Stream.Gating)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Fatalf("expected default server addr, got %q", cfg.Server.Addr)
	}
}

func TestValidateRequiresEngineURL(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.BaseURL = ""

	err := Validate(&cfg)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(verr.Error(), "engine.base_url") {
		t.Fatalf("expected field in error, got %v", verr)
	}
}

func TestValidateRejectsBadGating(t *testing.T) {
	cfg := validConfig()
	cfg.Stream.Gating = "strict"

	err := Validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "stream.gating") {
		t.Fatalf("expected gating error, got %v", err)
	}
}

func TestValidateRejectsUnsupportedVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Version = 2

	err := Validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported version 2") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	doc := "version: 1\nengine:\n  base_url: http://localhost:8787\nstream:\n  gating: reasoning-first\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Stream.Gating != string(stream.GatingReasoningFirst) {
		t.Fatalf("expected reasoning-first gating, got %q", cfg.Stream.Gating)
	}
	if cfg.Engine.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Fatalf("expected defaults applied on load, got %d", cfg.Engine.TimeoutSeconds)
	}
}

func TestFindConfigPathSearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	found, err := FindConfigPath(nested)
	if err != nil {
		t.Fatalf("find config: %v", err)
	}
	if found != path {
		t.Fatalf("expected %q, got %q", path, found)
	}
}

func TestFindConfigPathMissing(t *testing.T) {
	if _, err := FindConfigPath(t.TempDir()); err == nil {
		t.Fatalf("expected error when no config exists")
	}
}
