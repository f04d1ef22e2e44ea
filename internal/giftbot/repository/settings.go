package repository

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// settings 테이블 키
const (
	SettingRevealProbability = "game_cell_gift_chance"
	SettingAttemptPrice      = "stars_price_per_attempt"
)

// SetSetting: 설정 값을 저장한다 (관리자 작업).
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	entity := Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entity).Error; err != nil {
		return dbError("set_setting", err)
	}
	return nil
}

// LoadSettings: 설정 스냅샷을 읽는다. 값이 없거나 형식이 틀리면 defaults 를 쓴다.
func (r *Repository) LoadSettings(ctx context.Context, defaults model.Settings) (model.Settings, error) {
	if r == nil || r.db == nil {
		return defaults, fmt.Errorf("db is nil")
	}
	var rows []Setting
	if err := r.db.WithContext(ctx).
		Where("setting_key IN ?", []string{SettingRevealProbability, SettingAttemptPrice}).
		Find(&rows).Error; err != nil {
		return defaults, dbError("load_settings", err)
	}

	settings := defaults
	for _, row := range rows {
		raw := strings.TrimSpace(row.Value)
		switch row.Key {
		case SettingRevealProbability:
			if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				settings.RevealProbability = v
			} else {
				slog.Warn("setting_parse_failed", "key", row.Key, "value", raw)
			}
		case SettingAttemptPrice:
			if v, err := strconv.Atoi(raw); err == nil && v > 0 {
				settings.AttemptPrice = v
			} else {
				slog.Warn("setting_parse_failed", "key", row.Key, "value", raw)
			}
		}
	}
	return settings, nil
}
