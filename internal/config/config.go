package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Limits bound per-message resource consumption. Limit violations
// surface the configured maximum to the client.
type Limits struct {
	MessageLength      int
	MessageReplies     int
	MessageAttachments int
	MessageEmbeds      int
	MessageReactions   int
}

type Config struct {
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	ServerAddr     string
	LogLevel       slog.Level
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	EmbedsURL      string
	TaskWorkers    int
	DBMaxConns     int
	DBMinConns     int
	Limits         Limits
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       envOrDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ServerAddr:     envOrDefault("SERVER_ADDR", ":8080"),
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL")),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    envOrDefault("MINIO_BUCKET", "attachments"),
		EmbedsURL:      envOrDefault("EMBEDS_URL", "http://localhost:7070"),
		TaskWorkers:    envIntOrDefault("TASK_WORKERS", 4),
		DBMaxConns:     envIntOrDefault("DB_MAX_CONNS", 20),
		DBMinConns:     envIntOrDefault("DB_MIN_CONNS", 2),
		Limits: Limits{
			MessageLength:      envIntOrDefault("LIMIT_MESSAGE_LENGTH", 2000),
			MessageReplies:     envIntOrDefault("LIMIT_MESSAGE_REPLIES", 5),
			MessageAttachments: envIntOrDefault("LIMIT_MESSAGE_ATTACHMENTS", 5),
			MessageEmbeds:      envIntOrDefault("LIMIT_MESSAGE_EMBEDS", 10),
			MessageReactions:   envIntOrDefault("LIMIT_MESSAGE_REACTIONS", 20),
		},
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
