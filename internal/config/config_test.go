package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Fatalf("expected postgres driver by default, got %q", cfg.StoreDriver)
	}
	if cfg.MinioBucket == "" {
		t.Fatalf("expected default bucket")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_LEVEL", "-4")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.StoreDriver != DriverMemory {
		t.Fatalf("expected memory driver")
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("expected ssl flag override")
	}
	if cfg.LogLevel != -4 {
		t.Fatalf("expected debug log level, got %d", cfg.LogLevel)
	}
}
