package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"

	minSecretKeyLength = 32
)

var (
	ErrSecretKeyMissing     = errors.New("SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("SECRET_KEY uses a placeholder value")
	ErrSecretKeyTooShort    = fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	ErrUnknownDriver        = errors.New("DB_DRIVER must be sqlite or mongo")
)

var placeholderSecrets = map[string]bool{
	"change_me_in_production":                    true,
	"replace_with_at_least_32_random_characters": true,
}

type Config struct {
	Port           string
	SecretKey      string
	Location       *time.Location
	DBDriver       string
	DBPath         string
	MongoURI       string
	MongoDatabase  string
	FlowsURL       string
	FlowsTimeout   time.Duration
	DigestSchedule string
	TelegramToken  string
	LogLevel       slog.Level
}

// Load reads an optional .env file and then the process environment.
// SECRET_KEY is not checked here; commands that sign tokens call
// ResolveSecretKey.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		SecretKey:      strings.TrimSpace(os.Getenv("SECRET_KEY")),
		Location:       mustLoadLocation(getEnv("TZ", "UTC")),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:         getEnv("DB_PATH", filepath.Join("data", "bloom.db")),
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "bloom"),
		FlowsURL:       os.Getenv("AI_FLOWS_URL"),
		DigestSchedule: os.Getenv("DIGEST_SCHEDULE"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL")),
	}
	if _, set := os.LookupEnv("DIGEST_SCHEDULE"); !set {
		cfg.DigestSchedule = "0 8 * * *"
	}

	timeout, err := time.ParseDuration(getEnv("AI_FLOWS_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid AI_FLOWS_TIMEOUT: %q", os.Getenv("AI_FLOWS_TIMEOUT"))
	}
	cfg.FlowsTimeout = timeout

	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverMongo {
		return nil, fmt.Errorf("%w: got %q", ErrUnknownDriver, cfg.DBDriver)
	}
	return cfg, nil
}

func (cfg *Config) ResolveSecretKey() (string, error) {
	secret := cfg.SecretKey
	switch {
	case secret == "":
		return "", ErrSecretKeyMissing
	case placeholderSecrets[strings.ToLower(secret)]:
		return "", ErrSecretKeyPlaceholder
	case len(secret) < minSecretKeyLength:
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}

func (cfg *Config) TelegramEnabled() bool {
	return cfg.TelegramToken != ""
}

func (cfg *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
