package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("CHAT_PROVIDER", "")
	t.Setenv("STREAM_HEARTBEAT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ChatProvider != "static" {
		t.Fatalf("ChatProvider = %q, want static", cfg.ChatProvider)
	}
	if cfg.HeartbeatInterval != 15*time.Second {
		t.Fatalf("HeartbeatInterval = %v, want 15s", cfg.HeartbeatInterval)
	}
	if cfg.MaxUserTurns != 10 {
		t.Fatalf("MaxUserTurns = %d, want 10", cfg.MaxUserTurns)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL should default to empty, got %q", cfg.DatabaseURL)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "1919")
	t.Setenv("CHAT_PROVIDER", "openai")
	t.Setenv("STREAM_HEARTBEAT_SECONDS", "5")
	t.Setenv("TASK_RETENTION_MINUTES", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://studio.example.com, https://ops.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "1919" {
		t.Fatalf("Port = %q, want 1919", cfg.Port)
	}
	if cfg.ChatProvider != "openai" {
		t.Fatalf("ChatProvider = %q, want openai", cfg.ChatProvider)
	}
	if cfg.HeartbeatInterval != 5*time.Second {
		t.Fatalf("HeartbeatInterval = %v, want 5s", cfg.HeartbeatInterval)
	}
	if cfg.TaskRetention != 45*time.Minute {
		t.Fatalf("TaskRetention = %v, want 45m", cfg.TaskRetention)
	}
	want := []string{"https://studio.example.com", "https://ops.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v, want %#v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfigIgnoresMalformedInt(t *testing.T) {
	t.Setenv("STREAM_MAX_HEARTBEATS", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MaxHeartbeats != 40 {
		t.Fatalf("MaxHeartbeats = %d, want default 40", cfg.MaxHeartbeats)
	}
}
