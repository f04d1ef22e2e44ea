package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	commonconfig "github.com/park285/gift-grid-bot/internal/common/config"
)

// Dialector: 설정된 드라이버에 맞는 GORM dialector 를 반환한다.
func Dialector(cfg commonconfig.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite", "":
		// WAL + busy_timeout: 리마인더 스윕과 업데이트 처리 간 잠금 충돌 완화
		return sqlite.Open(cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}
}

// NewOpenFunc: OpenWithRetry 에 넘길 연결 함수를 만든다. 연결 후 Ping 으로 확인한다.
func NewOpenFunc(cfg commonconfig.DatabaseConfig) OpenFunc {
	return func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		dialector, err := Dialector(cfg)
		if err != nil {
			return nil, nil, err
		}

		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("gorm open failed: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("get sql db failed: %w", err)
		}
		if cfg.Driver == "sqlite" {
			// SQLite 는 단일 writer
			sqlDB.SetMaxOpenConns(1)
		} else {
			if cfg.MaxOpenConns > 0 {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
			}
			if cfg.MaxIdleConns > 0 {
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
			}
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("db ping failed: %w", err)
		}
		return db, sqlDB, nil
	}
}
