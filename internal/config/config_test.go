package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:50051" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Filter.MaxDepth != 32 || cfg.Filter.MaxTokens != 1024 {
		t.Errorf("Filter = %+v", cfg.Filter)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filterql.yaml")
	data := []byte(`
schema: testdata/recipes.yaml
database: recipes.db
server:
  address: 0.0.0.0:9000
  tokens:
    secret: alice
filter:
  max_depth: 8
  overrides:
    recipes:
      rating: coalesce(recipes.rating, 0)
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Schema != "testdata/recipes.yaml" || cfg.Database != "recipes.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Address != "0.0.0.0:9000" || cfg.Server.Tokens["secret"] != "alice" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Filter.MaxDepth != 8 || cfg.Filter.MaxTokens != 1024 {
		t.Errorf("Filter = %+v", cfg.Filter)
	}
	if got := cfg.Filter.Overrides["recipes"]["rating"]; got != "coalesce(recipes.rating, 0)" {
		t.Errorf("override = %q", got)
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, %v", level, err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FILTERQL_SERVER_ADDRESS", "127.0.0.1:7000")
	t.Setenv("FILTERQL_LOG_LEVEL", "warn")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:7000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLogger(t *testing.T) {
	if _, err := (LogConfig{Level: "debug", Format: "json"}).Logger(); err != nil {
		t.Errorf("Logger() error = %v", err)
	}
	if _, err := (LogConfig{Level: "loud"}).Logger(); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := (LogConfig{Level: "info", Format: "xml"}).Logger(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestFilterLimits(t *testing.T) {
	l := FilterConfig{MaxDepth: 4, MaxTokens: 50, MaxLength: 128}.Limits()
	if l.MaxDepth != 4 || l.MaxTokens != 50 || l.MaxLength != 128 {
		t.Errorf("Limits() = %+v", l)
	}
}
