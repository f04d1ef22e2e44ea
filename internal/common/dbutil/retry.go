package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// RetryConfig: DB 연결 재시도 설정
type RetryConfig struct {
	MaxAttempts int           // 최대 시도 횟수 (기본: 5)
	BaseDelay   time.Duration // 초기 대기 시간 (기본: 2초)
	MaxDelay    time.Duration // 최대 대기 시간 (기본: 30초)
}

// DefaultRetryConfig: 기본 재시도 설정
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
}

// OpenFunc: DB 연결을 시도하는 함수 타입
type OpenFunc func(ctx context.Context) (*gorm.DB, *sql.DB, error)

// OpenWithRetry: exponential backoff 로 DB 연결을 재시도합니다.
// 컨테이너 기동 순서상 DB 가 늦게 뜨는 경우를 흡수한다.
func OpenWithRetry(ctx context.Context, openFn OpenFunc, cfg RetryConfig, logger *slog.Logger) (*gorm.DB, *sql.DB, error) {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaults.MaxDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		db, sqlDB, err := openFn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("db_connect_success_after_retry", slog.Int("attempts", attempt+1))
			}
			return db, sqlDB, nil
		}
		lastErr = err
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		delay := min(cfg.BaseDelay*time.Duration(1<<uint(attempt)), cfg.MaxDelay)
		logger.Warn("db_connect_retry",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("db connect cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, nil, fmt.Errorf("db connect failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
