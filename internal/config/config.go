// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	Repository   string
	OutputDir    string
	DBPath       string
	MaxRepos     int
	MaxForkPages int
	ForkPageSize int
	HistoryKeep  int
	SanitizeSVG  bool
	ListenAddr   string
	LogLevel     slog.Level
}

// HasGitHubToken reports whether requests will be authenticated. Without a
// token the scan still runs against the much lower anonymous rate limit.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// GITHUB_TOKEN is optional. GITHUB_REPOSITORY (roeiba/forkMonkey) must have
// the form owner/name. Optional variables with defaults: FORKMONKEY_OUTPUT_DIR (web),
// FORKMONKEY_DB_PATH (forkmonkey.db), FORKMONKEY_MAX_REPOS (100),
// FORKMONKEY_MAX_FORK_PAGES (2), FORKMONKEY_FORK_PAGE_SIZE (100),
// FORKMONKEY_HISTORY_KEEP (30), FORKMONKEY_SANITIZE_SVG (true),
// FORKMONKEY_LISTEN_ADDR (127.0.0.1:8080), FORKMONKEY_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		Repository:   "roeiba/forkMonkey",
		OutputDir:    "web",
		DBPath:       "forkmonkey.db",
		MaxRepos:     100,
		MaxForkPages: 2,
		ForkPageSize: 100,
		HistoryKeep:  30,
		SanitizeSVG:  true,
		ListenAddr:   "127.0.0.1:8080",
		LogLevel:     slog.LevelInfo,
	}

	if v, ok := os.LookupEnv("GITHUB_REPOSITORY"); ok && v != "" {
		cfg.Repository = strings.TrimSpace(v)
	}
	if owner, name, ok := strings.Cut(cfg.Repository, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("GITHUB_REPOSITORY must be owner/name, got %q", cfg.Repository)
	}

	if v, ok := os.LookupEnv("FORKMONKEY_OUTPUT_DIR"); ok && v != "" {
		cfg.OutputDir = v
	}

	if v, ok := os.LookupEnv("FORKMONKEY_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}

	for _, setting := range []struct {
		key     string
		dst     *int
		atLeast int
	}{
		{"FORKMONKEY_MAX_REPOS", &cfg.MaxRepos, 1},
		{"FORKMONKEY_MAX_FORK_PAGES", &cfg.MaxForkPages, 1},
		{"FORKMONKEY_FORK_PAGE_SIZE", &cfg.ForkPageSize, 1},
		{"FORKMONKEY_HISTORY_KEEP", &cfg.HistoryKeep, 0},
	} {
		if err := lookupInt(setting.key, setting.dst, setting.atLeast); err != nil {
			return nil, err
		}
	}
	if cfg.ForkPageSize > 100 {
		return nil, fmt.Errorf("FORKMONKEY_FORK_PAGE_SIZE must be at most 100, got %d", cfg.ForkPageSize)
	}

	if v, ok := os.LookupEnv("FORKMONKEY_SANITIZE_SVG"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("FORKMONKEY_SANITIZE_SVG has invalid boolean %q: %w", v, err)
		}
		cfg.SanitizeSVG = parsed
	}

	if v, ok := os.LookupEnv("FORKMONKEY_LISTEN_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("FORKMONKEY_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("FORKMONKEY_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return cfg, nil
}

func lookupInt(key string, dst *int, minValue int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	if parsed < minValue {
		return fmt.Errorf("%s must be at least %d, got %d", key, minValue, parsed)
	}

	*dst = parsed
	return nil
}
