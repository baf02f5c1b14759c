package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "DATABASE_URL", "APP_ENV", "CLIENT_ORIGIN", "REQUEST_TIMEOUT",
		"PUZZLE_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "DEEPSEEK_API_KEY", "DEEPSEEK_MODEL",
		"PROVIDER_TIMEOUT", "PUZZLES_FILE", "PREFETCH_SIZE", "BOSS_INTRO", "BOSS_TICK",
		"JWT_SECRET", "JWT_EXPIRES_DAYS", "COOKIE_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5175" || cfg.DatabaseURL != "./data/hangman.db" || cfg.Provider != ProviderLocal {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.PrefetchSize != 3 || cfg.BossIntro != 3*time.Second || cfg.BossTick != time.Second {
		t.Errorf("game defaults: %+v", cfg)
	}
	if cfg.Auth.CookieName != "hangman_token" || cfg.Auth.ExpireDays != 14 || cfg.IsProduction() {
		t.Errorf("auth defaults: %+v", cfg.Auth)
	}
}

func TestProviderFollowsKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "ds")
	cfg, err := Load()
	if err != nil || cfg.Provider != ProviderDeepseek {
		t.Fatalf("provider = %v, %v", cfg, err)
	}
	t.Setenv("GEMINI_API_KEY", "gm")
	cfg, err = Load()
	if err != nil || cfg.Provider != ProviderGemini {
		t.Fatalf("provider = %v, %v", cfg, err)
	}
	t.Setenv("PUZZLE_PROVIDER", "LOCAL")
	cfg, err = Load()
	if err != nil || cfg.Provider != ProviderLocal {
		t.Fatalf("explicit provider ignored: %v, %v", cfg, err)
	}
}

func TestDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER_TIMEOUT", "15")
	t.Setenv("BOSS_TICK", "250ms")
	t.Setenv("BOSS_INTRO", "nonsense")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProviderTimeout != 15*time.Second || cfg.BossTick != 250*time.Millisecond || cfg.BossIntro != 3*time.Second {
		t.Errorf("durations: %v %v %v", cfg.ProviderTimeout, cfg.BossTick, cfg.BossIntro)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"gemini without key", map[string]string{"PUZZLE_PROVIDER": "gemini"}, "GEMINI_API_KEY"},
		{"deepseek without key", map[string]string{"PUZZLE_PROVIDER": "deepseek"}, "DEEPSEEK_API_KEY"},
		{"unknown provider", map[string]string{"PUZZLE_PROVIDER": "openai"}, "unknown PUZZLE_PROVIDER"},
		{"bad prefetch", map[string]string{"PREFETCH_SIZE": "0"}, "PREFETCH_SIZE"},
		{"bad expiry", map[string]string{"JWT_EXPIRES_DAYS": "-1"}, "JWT_EXPIRES_DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
