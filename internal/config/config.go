// Package config reads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Puzzle providers.
const (
	ProviderGemini   = "gemini"
	ProviderDeepseek = "deepseek"
	ProviderLocal    = "local"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	LogLevel       string
	DatabaseURL    string
	AppEnv         string
	ClientOrigin   string
	RequestTimeout time.Duration

	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	DeepseekAPIKey  string
	DeepseekModel   string
	ProviderTimeout time.Duration
	PuzzlesFile     string

	PrefetchSize int
	BossIntro    time.Duration
	BossTick     time.Duration

	Auth AuthConfig
}

// AuthConfig controls JWT cookies.
type AuthConfig struct {
	JWTSecret  string
	ExpireDays int
	CookieName string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", "./data/hangman.db"),
		AppEnv:         getEnv("APP_ENV", "development"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 90*time.Second),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DeepseekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepseekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		PuzzlesFile:     os.Getenv("PUZZLES_FILE"),

		PrefetchSize: getEnvInt("PREFETCH_SIZE", 3),
		BossIntro:    getEnvDuration("BOSS_INTRO", 3*time.Second),
		BossTick:     getEnvDuration("BOSS_TICK", time.Second),

		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "dev_secret_change_me"),
			ExpireDays: getEnvInt("JWT_EXPIRES_DAYS", 14),
			CookieName: getEnv("COOKIE_NAME", "hangman_token"),
		},
	}
	cfg.Provider = strings.ToLower(getEnv("PUZZLE_PROVIDER", cfg.defaultProvider()))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultProvider prefers whichever AI key is configured.
func (c *Config) defaultProvider() string {
	switch {
	case c.GeminiAPIKey != "":
		return ProviderGemini
	case c.DeepseekAPIKey != "":
		return ProviderDeepseek
	default:
		return ProviderLocal
	}
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("PUZZLE_PROVIDER=gemini requires GEMINI_API_KEY")
		}
	case ProviderDeepseek:
		if c.DeepseekAPIKey == "" {
			return fmt.Errorf("PUZZLE_PROVIDER=deepseek requires DEEPSEEK_API_KEY")
		}
	case ProviderLocal:
	default:
		return fmt.Errorf("unknown PUZZLE_PROVIDER %q", c.Provider)
	}
	if c.PrefetchSize <= 0 {
		return fmt.Errorf("PREFETCH_SIZE must be > 0")
	}
	if c.ProviderTimeout <= 0 || c.BossIntro <= 0 || c.BossTick <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("durations must be > 0")
	}
	if c.Auth.ExpireDays <= 0 {
		return fmt.Errorf("JWT_EXPIRES_DAYS must be > 0")
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("COOKIE_NAME cannot be empty")
	}
	return nil
}

// IsProduction flips cookies to Secure/SameSite=None.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
