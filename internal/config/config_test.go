package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "REDIS_ADDR", "TRANSITION_TIMEOUT_MS", "CART_TTL_HOURS", "CORS_ORIGINS", "ACCESS_TOKEN_TTL_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.TransitionTimeout != 5*time.Second {
		t.Fatalf("expected 5s transition timeout, got %s", cfg.TransitionTimeout)
	}
	if cfg.CartTTL != 72*time.Hour {
		t.Fatalf("expected 72h cart ttl, got %s", cfg.CartTTL)
	}
	if cfg.AccessTokenTTL != 12*time.Hour {
		t.Fatalf("expected 12h token ttl, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RedisAddr != "" || len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected redis and cors unset, got %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TRANSITION_TIMEOUT_MS", "250")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg := FromEnv()

	if cfg.HTTPAddr != ":9090" || cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TransitionTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.TransitionTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.ShutdownTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := Config{DBConnString: "postgres://x", JWTSecret: "s", TransitionTimeout: time.Second, AccessTokenTTL: time.Hour}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	noSecret := base
	noSecret.JWTSecret = ""
	if err := noSecret.Validate(); err == nil {
		t.Fatalf("expected missing secret error")
	}

	zeroTimeout := base
	zeroTimeout.TransitionTimeout = 0
	if err := zeroTimeout.Validate(); err == nil {
		t.Fatalf("expected timeout error")
	}
}
