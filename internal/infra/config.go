package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	ChatProvider  string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	ImageProvider    string
	GeminiAPIKey     string
	GeminiImageModel string
	ImageSize        string
	ImageQuality     string

	StorageBackend string
	StorageDir     string
	StorageBaseURL string
	S3Bucket       string
	S3Prefix       string
	AWSRegion      string

	HeartbeatInterval time.Duration
	MaxHeartbeats     int
	TaskRetention     time.Duration
	ReaperSchedule    string
	MaxUserTurns      int
	PromptBudget      int

	AllowedOrigins   []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional; without it the service
// keeps conversations in memory, which is fine for development.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		ChatProvider:  getEnv("CHAT_PROVIDER", "static"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		ImageProvider:    getEnv("IMAGE_PROVIDER", "static"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
		ImageSize:        getEnv("IMAGE_SIZE", "1024x1024"),
		ImageQuality:     getEnv("IMAGE_QUALITY", "standard"),

		StorageBackend: getEnv("STORAGE_BACKEND", "filesystem"),
		StorageDir:     getEnv("STORAGE_DIR", "./data/assets"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Prefix:       getEnv("S3_PREFIX", "assets"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),

		HeartbeatInterval: time.Second * time.Duration(getEnvInt("STREAM_HEARTBEAT_SECONDS", 15)),
		MaxHeartbeats:     getEnvInt("STREAM_MAX_HEARTBEATS", 40),
		TaskRetention:     time.Minute * time.Duration(getEnvInt("TASK_RETENTION_MINUTES", 30)),
		ReaperSchedule:    getEnv("TASK_REAPER_SCHEDULE", "@every 5m"),
		MaxUserTurns:      getEnvInt("MAX_USER_TURNS", 10),
		PromptBudget:      getEnvInt("IMAGE_PROMPT_BUDGET", 2000),

		AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),
		// Write timeout stays off: streaming responses outlive any sane value.
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 0)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
