package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_RequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error without BOT_TOKEN")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("expected port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if cfg.Game.DefaultRevealProbability != 0.10 {
		t.Errorf("expected reveal probability 0.10, got %v", cfg.Game.DefaultRevealProbability)
	}
	if cfg.Game.OnboardingBonusAttempts != 3 {
		t.Errorf("expected onboarding bonus 3, got %d", cfg.Game.OnboardingBonusAttempts)
	}
	if cfg.Sponsor.JoinRequestTTL != 24*time.Hour {
		t.Errorf("expected 24h join request ttl, got %v", cfg.Sponsor.JoinRequestTTL)
	}
	if cfg.Telegram.CallTimeout != 10*time.Second || cfg.Telegram.Workers != 10 {
		t.Errorf("unexpected telegram defaults: %+v", cfg.Telegram)
	}
	if !cfg.Reminder.Enabled || cfg.Reminder.SweepInterval != time.Minute {
		t.Errorf("unexpected reminder defaults: %+v", cfg.Reminder)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled by default")
	}
}

func TestLoadFromEnv_Admin(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "11, 22")
	t.Setenv("WITHDRAW_REVIEW_CHAT_ID", "-100500")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Admin.IsAdmin(22) || cfg.Admin.IsAdmin(33) {
		t.Errorf("unexpected admin set: %v", cfg.Admin.UserIDs)
	}
	if cfg.Admin.WithdrawReviewChatID != -100500 {
		t.Errorf("expected review chat -100500, got %d", cfg.Admin.WithdrawReviewChatID)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ADMIN_IDS", "1,x"},
		{"GAME_DEFAULT_ATTEMPT_PRICE", "0"},
		{"ONBOARDING_BONUS_ATTEMPTS", "-1"},
		{"REMINDER_SEND_RATE_PER_SECOND", "0"},
		{"DB_DRIVER", "oracle"},
		{"USER_LOCK_TTL_SECONDS", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "123:abc")
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
