// Package config reads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/browser"
	"github.com/polzovatel/mmid-page-model/internal/classify"
	"github.com/polzovatel/mmid-page-model/internal/session"
)

const (
	headlessEnv     = "MMID_HEADLESS"
	navTimeoutEnv   = "MMID_NAV_TIMEOUT"
	highlightEnv    = "MMID_HIGHLIGHT"
	ignoreIDsEnv    = "MMID_IGNORE_IDS"
	sessionCacheEnv = "MMID_SESSION_CACHE"
	logLevelEnv     = "MMID_LOG_LEVEL"
)

type Config struct {
	Headless     bool
	NavTimeout   time.Duration
	Highlight    string
	IgnoreIDs    []string
	SessionCache int
	LogLevel     zerolog.Level
}

// Load reads .env when present and then the process environment. Unset
// variables keep their defaults; malformed ones are errors.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		Headless:     parseBoolEnv(headlessEnv, true),
		NavTimeout:   30 * time.Second,
		Highlight:    firstNonEmpty(strings.TrimSpace(os.Getenv(highlightEnv)), session.DefaultHighlight),
		IgnoreIDs:    splitList(os.Getenv(ignoreIDsEnv)),
		SessionCache: session.DefaultCacheSize,
		LogLevel:     zerolog.InfoLevel,
	}
	if raw := strings.TrimSpace(os.Getenv(navTimeoutEnv)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: invalid duration %q", navTimeoutEnv, raw)
		}
		cfg.NavTimeout = d
	}
	if raw := strings.TrimSpace(os.Getenv(sessionCacheEnv)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s: invalid size %q", sessionCacheEnv, raw)
		}
		cfg.SessionCache = n
	}
	if raw := strings.TrimSpace(os.Getenv(logLevelEnv)); raw != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", logLevelEnv, err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// SessionOptions returns injection options with the configured highlight and
// extra ignored ids.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Highlight:  c.Highlight,
		Ignore:     classify.DefaultIgnore.WithIDs(c.IgnoreIDs...),
		Classifier: classify.Default,
	}
}

// BrowserOptions returns the launcher options.
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{Headless: c.Headless, NavTimeout: c.NavTimeout}
}

func parseBoolEnv(name string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
