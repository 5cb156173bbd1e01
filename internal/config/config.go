package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment      string
	AppName          string
	Port             string
	LogLevel         slog.Level
	SQLitePath       string
	MigrationsPath   string
	FieldsPath       string
	SeedDefaultData  bool
	ReindexEnabled   bool
	ReindexMinutes   int
	RatingWebhookURL string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:      getEnv("APP_ENV", "development"),
		AppName:          getEnv("APP_NAME", "starfield"),
		Port:             getEnv("APP_PORT", "8080"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/starfield.sqlite"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "./migrations"),
		FieldsPath:       getEnv("FIELDS_PATH", "./fields"),
		SeedDefaultData:  getEnvAsBool("SEED_DEFAULT_DATA", true),
		ReindexEnabled:   getEnvAsBool("REINDEX_ENABLED", true),
		ReindexMinutes:   getEnvAsInt("REINDEX_MINUTES", 15),
		RatingWebhookURL: strings.TrimSpace(os.Getenv("RATING_WEBHOOK_URL")),
	}

	if cfg.ReindexMinutes <= 0 {
		cfg.ReindexMinutes = 15
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
