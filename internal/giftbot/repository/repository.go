package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
)

// Repository: DB 접근을 위한 GORM 기반 리포지토리
// 메서드들은 도메인별 파일로 분리됨:
//   - users.go: 사용자/시도 횟수
//   - ui_state.go: 단일 메시지 UI 상태
//   - sponsors.go: 스폰서 카탈로그, 보너스 지급 장부, 가입 요청
//   - gifts.go: 경품 카탈로그
//   - sessions.go: 보드 세션
//   - inventory.go: 인벤토리
//   - reminders.go: 리마인더 상태
//   - settings.go, payments.go, stats.go
type Repository struct {
	db *gorm.DB
}

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate: 자동으로 DB 테이블 스키마를 마이그레이션한다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(
		&User{},
		&UIState{},
		&StartSponsor{},
		&TaskSponsor{},
		&Gift{},
		&SponsorBonusGrant{},
		&InventoryItem{},
		&GameSession{},
		&UserReminder{},
		&JoinRequest{},
		&Setting{},
		&Payment{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Transaction: 하나의 DB 트랜잭션 안에서 fn 을 실행한다.
// fn 에 전달된 Repository 만 사용해야 한다 (SQLite 는 커넥션이 1개라 바깥 Repository 를 쓰면 교착된다).
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func dbError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.DatabaseError{Operation: operation, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
