package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" || cfg.Server.RPCAddress != ":8081" {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Database.Driver != "none" || cfg.Database.Writers != 2 {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info log level, got %q", cfg.Log.Level)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  http_address: ":9000"
  heartbeat_seconds: 15
database:
  driver: gorm
  postgres:
    host: db.internal
    port: 6543
log:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_POSTGRES_HOST", "override.internal")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.HTTPAddress != ":9000" || cfg.Server.HeartbeatSeconds != 15 {
		t.Errorf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Database.Driver != "gorm" || cfg.Database.Postgres.Port != 6543 {
		t.Errorf("file values not applied: %+v", cfg.Database)
	}
	if cfg.Database.Postgres.Host != "override.internal" {
		t.Errorf("environment should override the file, got %q", cfg.Database.Postgres.Host)
	}
	if cfg.Server.RPCAddress != ":8081" {
		t.Errorf("unset keys should keep defaults, got %q", cfg.Server.RPCAddress)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load never overrides, so make sure the variable starts unset
	// and is removed again afterwards.
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level from .env, got %q", cfg.Log.Level)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}
