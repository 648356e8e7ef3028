package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestResolveSecretKey(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		want   error
	}{
		{name: "empty", secret: "", want: ErrSecretKeyMissing},
		{name: "placeholder", secret: "change_me_in_production", want: ErrSecretKeyPlaceholder},
		{name: "example placeholder", secret: "replace_with_at_least_32_random_characters", want: ErrSecretKeyPlaceholder},
		{name: "too short", secret: "too-short-secret", want: ErrSecretKeyTooShort},
		{name: "valid", secret: "0123456789abcdef0123456789abcdef"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{SecretKey: tc.secret}
			secret, err := cfg.ResolveSecretKey()
			if tc.want != nil {
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid secret, got error: %v", err)
			}
			if secret != tc.secret {
				t.Fatalf("expected %q, got %q", tc.secret, secret)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "TZ", "DB_DRIVER", "DB_PATH", "MONGO_DATABASE", "AI_FLOWS_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.MongoDatabase != "bloom" {
		t.Fatalf("expected mongo database bloom, got %q", cfg.MongoDatabase)
	}
	if cfg.FlowsTimeout != 30*time.Second {
		t.Fatalf("expected 30s flows timeout, got %s", cfg.FlowsTimeout)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info log level, got %s", cfg.LogLevel)
	}
}

func TestLoadDigestScheduleCanBeDisabled(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DIGEST_SCHEDULE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.DigestSchedule != "" {
		t.Fatalf("expected empty schedule to disable the digest, got %q", cfg.DigestSchedule)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")

	if _, err := Load(); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestLoadInvalidTimezoneFallsBackToUTC(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TZ", "Mars/Olympus_Mons")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location)
	}
}
