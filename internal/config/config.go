// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ストレージバックエンド名。
const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	StorageBackend string
	DonorsFile     string
	DatabaseURL    string

	// Rate Limit
	RateLimitGeneral      int
	RateLimitRegistration int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Shutdown
	ShutdownTimeout time.Duration
}

// Load は環境変数からConfigを読み込む。
// postgresバックエンド選択時にDATABASE_URLが未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.StorageBackend = getEnvString("STORAGE_BACKEND", BackendJSON)
	switch cfg.StorageBackend {
	case BackendJSON, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q (supported: json, postgres, memory)", cfg.StorageBackend)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variables are not set: [DATABASE_URL]")
	}

	// Optional fields with defaults
	cfg.DonorsFile = getEnvString("DONORS_FILE", "donors.json")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitRegistration = getEnvInt("RATE_LIMIT_REGISTRATION", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
