package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearTimetableEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TIMETABLE_CONFIG_FILE",
		"TIMETABLE_HTTP_PORT",
		"TIMETABLE_SQLITE_DSN",
		"TIMETABLE_SESSION_SECRET",
		"TIMETABLE_SESSION_TTL",
		"TIMETABLE_WEEK_CACHE_TTL",
	} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearTimetableEnv(t)

		const secret = "super-secret"
		t.Setenv("TIMETABLE_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:timetable.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.WeekCacheTTL != 30*time.Second {
			t.Fatalf("expected default week cache TTL, got %s", cfg.WeekCacheTTL)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearTimetableEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "必須の環境変数が設定されていません: TIMETABLE_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearTimetableEnv(t)
		t.Setenv("TIMETABLE_SESSION_SECRET", "secret-value")
		t.Setenv("TIMETABLE_HTTP_PORT", "9090")
		t.Setenv("TIMETABLE_SQLITE_DSN", "file:/tmp/timetable.db")
		t.Setenv("TIMETABLE_SESSION_TTL", "12h")
		t.Setenv("TIMETABLE_WEEK_CACHE_TTL", "1m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.WeekCacheTTL != time.Minute {
			t.Fatalf("expected week cache TTL 1m, got %s", cfg.WeekCacheTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/timetable.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		clearTimetableEnv(t)
		t.Setenv("TIMETABLE_SESSION_SECRET", "secret-value")
		t.Setenv("TIMETABLE_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed port")
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {

	writeFile := func(t *testing.T, contents string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "timetable.yaml")
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatalf("write config file: %v", err)
		}
		return path
	}

	t.Run("reads values from the YAML file", func(t *testing.T) {
		clearTimetableEnv(t)
		path := writeFile(t, "http_port: 9191\nsqlite_dsn: file:/tmp/file.db\nsession_secret: file-secret\nsession_ttl: 6h\n")
		t.Setenv("TIMETABLE_CONFIG_FILE", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9191 {
			t.Fatalf("expected port from file, got %d", cfg.HTTPPort)
		}
		if cfg.SessionSecret != "file-secret" {
			t.Fatalf("expected secret from file, got %q", cfg.SessionSecret)
		}
		if cfg.SessionTTL != 6*time.Hour {
			t.Fatalf("expected session TTL 6h, got %s", cfg.SessionTTL)
		}
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		clearTimetableEnv(t)
		path := writeFile(t, "http_port: 9191\nsession_secret: file-secret\n")
		t.Setenv("TIMETABLE_CONFIG_FILE", path)
		t.Setenv("TIMETABLE_HTTP_PORT", "9292")
		t.Setenv("TIMETABLE_SESSION_SECRET", "env-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9292 {
			t.Fatalf("expected environment port, got %d", cfg.HTTPPort)
		}
		if cfg.SessionSecret != "env-secret" {
			t.Fatalf("expected environment secret, got %q", cfg.SessionSecret)
		}
	})

	t.Run("rejects unreadable files", func(t *testing.T) {
		clearTimetableEnv(t)
		t.Setenv("TIMETABLE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing config file")
		}
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		clearTimetableEnv(t)
		path := writeFile(t, "http_port: [not a number\n")
		t.Setenv("TIMETABLE_CONFIG_FILE", path)

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for malformed YAML")
		}
	})
}
