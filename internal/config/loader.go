package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config captures configuration values for the timetable service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	SessionTTL    time.Duration
	WeekCacheTTL  time.Duration
}

type fileConfig struct {
	HTTPPort      int    `yaml:"http_port"`
	SQLiteDSN     string `yaml:"sqlite_dsn"`
	SessionSecret string `yaml:"session_secret"`
	SessionTTL    string `yaml:"session_ttl"`
	WeekCacheTTL  string `yaml:"week_cache_ttl"`
}

// Load resolves configuration from an optional YAML file named by
// TIMETABLE_CONFIG_FILE, then overlays TIMETABLE_* environment variables.
// Environment values always win over file values.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		SQLiteDSN:    "file:timetable.db?_foreign_keys=on",
		SessionTTL:   24 * time.Hour,
		WeekCacheTTL: 30 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("TIMETABLE_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if portValue := strings.TrimSpace(os.Getenv("TIMETABLE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TIMETABLE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TIMETABLE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("TIMETABLE_SESSION_SECRET")); secret != "" {
		cfg.SessionSecret = secret
	}
	if cfg.SessionSecret == "" {
		missing = append(missing, "TIMETABLE_SESSION_SECRET")
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TIMETABLE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TIMETABLE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TIMETABLE_WEEK_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TIMETABLE_WEEK_CACHE_TTL")
		} else {
			cfg.WeekCacheTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルを読み込めません: %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("設定ファイルの形式が不正です: %s: %w", path, err)
	}

	if file.HTTPPort > 0 {
		cfg.HTTPPort = file.HTTPPort
	}
	if dsn := strings.TrimSpace(file.SQLiteDSN); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if secret := strings.TrimSpace(file.SessionSecret); secret != "" {
		cfg.SessionSecret = secret
	}
	if ttlValue := strings.TrimSpace(file.SessionTTL); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("設定ファイルの値が不正です: session_ttl")
		}
		cfg.SessionTTL = ttl
	}
	if ttlValue := strings.TrimSpace(file.WeekCacheTTL); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("設定ファイルの値が不正です: week_cache_ttl")
		}
		cfg.WeekCacheTTL = ttl
	}

	return nil
}
