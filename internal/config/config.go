package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrDatabaseURLRequired = errors.New("DATABASE_URL is required when ENABLE_DB=true")

type Config struct {
	Port           string
	DatabaseURL    string
	EnableDB       bool
	AutoMigrate    bool
	GinMode        string
	LogLevel       string
	AllowedOrigins []string
	MaxBodyBytes   int64
	ModelDataPath  string
	StaticDir      string
}

// LoadDotEnv applies an optional .env file. Variables already set in the
// process environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	LoadDotEnv()

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be a positive integer, got %q", os.Getenv("MAX_BODY_BYTES"))
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		EnableDB:       envBool("ENABLE_DB", false),
		AutoMigrate:    envBool("AUTO_MIGRATE", true),
		GinMode:        getEnv("GIN_MODE", "release"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		MaxBodyBytes:   maxBody,
		ModelDataPath:  os.Getenv("MODEL_DATA_PATH"),
		StaticDir:      os.Getenv("STATIC_DIR"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, ErrDatabaseURLRequired
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true") || val == "1"
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
