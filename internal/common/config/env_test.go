package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIntFromEnv(t *testing.T) {
	key := "TEST_INT_ENV"

	t.Run("default", func(t *testing.T) {
		got, err := IntFromEnv(key, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	})

	t.Run("blank uses default", func(t *testing.T) {
		t.Setenv(key, "   ")
		got, err := IntFromEnv(key, 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(key, "not_int")
		if _, err := IntFromEnv(key, 42); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestInt64ListFromEnv(t *testing.T) {
	key := "TEST_ID_LIST"

	t.Run("unset", func(t *testing.T) {
		got, err := Int64ListFromEnv(key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("mixed separators", func(t *testing.T) {
		t.Setenv(key, "100, 200 300,,-5")
		got, err := Int64ListFromEnv(key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []int64{100, 200, 300, -5}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
			}
		}
	})

	t.Run("invalid item", func(t *testing.T) {
		t.Setenv(key, "1,abc")
		if _, err := Int64ListFromEnv(key); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestBoolFromEnv(t *testing.T) {
	key := "TEST_BOOL_ENV"

	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"Y", true},
		{"1", true},
		{"no", false},
		{"0", false},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv(key, tt.val)
			got, err := BoolFromEnv(key, !tt.want)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(key, "maybe")
		if _, err := BoolFromEnv(key, false); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDurationSecondsFromEnv_Negative(t *testing.T) {
	t.Setenv("TEST_DURATION", "-1")
	if _, err := DurationSecondsFromEnv("TEST_DURATION", 5); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Setenv("TEST_FIRST_B", "second")
	if got := StringFromEnvFirstNonEmpty([]string{"TEST_FIRST_A", "TEST_FIRST_B"}, "def"); got != "second" {
		t.Errorf("expected second, got %s", got)
	}

	t.Setenv("TEST_FIRST_PORT", "6380")
	port, err := IntFromEnvFirstNonEmpty([]string{"TEST_MISSING_PORT", "TEST_FIRST_PORT"}, 6379)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port != 6380 {
		t.Errorf("expected 6380, got %d", port)
	}
}

func TestReadServerTuningConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := ReadServerTuningConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("expected 5s read header timeout, got %v", cfg.ReadHeaderTimeout)
	}
	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("expected 90s idle timeout, got %v", cfg.IdleTimeout)
	}
	if cfg.MaxHeaderBytes != 1<<20 {
		t.Errorf("expected 1MiB header limit, got %d", cfg.MaxHeaderBytes)
	}
}

func TestReadDatabaseConfigFromEnv(t *testing.T) {
	t.Run("sqlite default", func(t *testing.T) {
		cfg, err := ReadDatabaseConfigFromEnv("giftbot")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Driver != "sqlite" || cfg.SQLitePath != "giftbot.db" {
			t.Errorf("unexpected sqlite config: %+v", cfg)
		}
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "Postgres")
		t.Setenv("DB_HOST", "db")
		cfg, err := ReadDatabaseConfigFromEnv("giftbot")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Driver != "postgres" || cfg.Host != "db" || cfg.User != "giftbot_app" {
			t.Errorf("unexpected postgres config: %+v", cfg)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		if _, err := ReadDatabaseConfigFromEnv("giftbot"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestLoadDotenvIfPresent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TEST_DOTENV_VALUE=loaded\n"), 0o600); err != nil {
		t.Fatalf("write dotenv failed: %v", err)
	}
	t.Setenv("TEST_DOTENV_VALUE", "")
	os.Unsetenv("TEST_DOTENV_VALUE")

	if err := LoadDotenvIfPresent(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("TEST_DOTENV_VALUE"); got != "loaded" {
		t.Errorf("expected loaded, got %q", got)
	}
}
