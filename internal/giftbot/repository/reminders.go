package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

func toReminderModel(e UserReminder) model.ReminderState {
	return model.ReminderState{
		UserID:            e.UserID,
		LastActivityAt:    e.LastActivityAt,
		NextReminderAt:    e.NextReminderAt,
		Stage:             e.Stage,
		FirstSequenceDone: e.FirstSequenceDone,
	}
}

// GetReminder: 리마인더 상태. 없으면 found=false.
func (r *Repository) GetReminder(ctx context.Context, userID int64) (model.ReminderState, bool, error) {
	if r == nil || r.db == nil {
		return model.ReminderState{}, false, fmt.Errorf("db is nil")
	}
	var entity UserReminder
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&entity).Error; err != nil {
		if isNotFound(err) {
			return model.ReminderState{}, false, nil
		}
		return model.ReminderState{}, false, dbError("get_reminder", err)
	}
	return toReminderModel(entity), true, nil
}

// TouchReminder: 활동 시각과 다음 발송 시각만 갱신한다. stage 와 완료 플래그는 건드리지 않는다.
func (r *Repository) TouchReminder(ctx context.Context, userID int64, now time.Time, next time.Time) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	entity := UserReminder{UserID: userID, LastActivityAt: now, NextReminderAt: &next}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_activity_at", "next_reminder_at"}),
	}).Create(&entity).Error; err != nil {
		return dbError("touch_reminder", err)
	}
	return nil
}

// SaveReminderProgress: 발송 후 stage/완료 플래그/다음 발송 시각을 기록한다.
func (r *Repository) SaveReminderProgress(ctx context.Context, state model.ReminderState) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).Model(&UserReminder{}).Where("user_id = ?", state.UserID).
		Updates(map[string]any{
			"stage":               state.Stage,
			"first_sequence_done": state.FirstSequenceDone,
			"next_reminder_at":    state.NextReminderAt,
		}).Error; err != nil {
		return dbError("save_reminder_progress", err)
	}
	return nil
}

// ClearNextReminder: 다음 발송 시각을 비운다. finish=true 면 첫 시퀀스 완료로 고정한다.
func (r *Repository) ClearNextReminder(ctx context.Context, userID int64, finish bool) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	updates := map[string]any{"next_reminder_at": nil}
	if finish {
		updates["first_sequence_done"] = true
	}
	if err := r.db.WithContext(ctx).Model(&UserReminder{}).Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return dbError("clear_next_reminder", err)
	}
	return nil
}

// DueReminders: next_reminder_at <= now 인 차단되지 않은 사용자들
func (r *Repository) DueReminders(ctx context.Context, now time.Time, limit int) ([]model.ReminderState, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	query := r.db.WithContext(ctx).
		Table("user_reminders").
		Select("user_reminders.*").
		Joins("JOIN users ON users.id = user_reminders.user_id").
		Where("user_reminders.next_reminder_at IS NOT NULL").
		Where("user_reminders.next_reminder_at <= ?", now).
		Where("users.is_banned = ?", false).
		Order("user_reminders.next_reminder_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []UserReminder
	if err := query.Scan(&rows).Error; err != nil {
		return nil, dbError("due_reminders", err)
	}
	states := make([]model.ReminderState, 0, len(rows))
	for _, row := range rows {
		states = append(states, toReminderModel(row))
	}
	return states, nil
}
