package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// GetUIState: 사용자의 현재 UI 메시지 상태. 없으면 found=false.
func (r *Repository) GetUIState(ctx context.Context, userID int64) (model.UIState, bool, error) {
	if r == nil || r.db == nil {
		return model.UIState{}, false, fmt.Errorf("db is nil")
	}
	var entity UIState
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&entity).Error; err != nil {
		if isNotFound(err) {
			return model.UIState{}, false, nil
		}
		return model.UIState{}, false, dbError("get_ui_state", err)
	}
	return model.UIState{
		UserID:    entity.UserID,
		ChatID:    entity.ChatID,
		MessageID: entity.MessageID,
		Screen:    entity.Screen,
		Payload:   []byte(entity.Payload),
		UpdatedAt: entity.UpdatedAt,
	}, true, nil
}

// SaveUIState: 사용자당 한 행을 덮어쓴다.
func (r *Repository) SaveUIState(ctx context.Context, state model.UIState) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	now := time.Now()
	entity := UIState{
		UserID:    state.UserID,
		ChatID:    state.ChatID,
		MessageID: state.MessageID,
		Screen:    state.Screen,
		UpdatedAt: now,
	}
	if len(state.Payload) > 0 {
		entity.Payload = datatypes.JSON(state.Payload)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"chat_id":    entity.ChatID,
			"message_id": entity.MessageID,
			"screen":     entity.Screen,
			"payload":    entity.Payload,
			"updated_at": now,
		}),
	}).Create(&entity).Error; err != nil {
		return dbError("save_ui_state", err)
	}
	return nil
}
