// Package reminder 는 비활성 사용자 리마인더 단계와 주기 스윕을 관리한다.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
)

// Ladder: 단계별 다음 리마인더까지의 지연. 마지막 값이 첫 시퀀스 이후 고정 주기다.
var Ladder = []time.Duration{
	10 * time.Minute,
	30 * time.Minute,
	3 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
	72 * time.Hour,
	72 * time.Hour,
}

// FinalStage: 도달하면 첫 시퀀스가 끝나는 단계
const FinalStage = 7

// Delay: stage 에 해당하는 지연. 첫 시퀀스가 끝났으면 항상 고정 주기.
func Delay(stage int, firstSequenceDone bool) time.Duration {
	if firstSequenceDone {
		return Ladder[len(Ladder)-1]
	}
	switch {
	case stage < 0:
		stage = 0
	case stage >= len(Ladder):
		stage = len(Ladder) - 1
	}
	return Ladder[stage]
}

// Next: 발송 후 상태를 계산한다. 첫 시퀀스 중이면 stage 를 하나 올리고, FinalStage 에 닿으면 완료로 고정한다.
func Next(state model.ReminderState, now time.Time) model.ReminderState {
	if !state.FirstSequenceDone {
		if state.Stage < FinalStage {
			state.Stage++
		}
		if state.Stage >= FinalStage {
			state.FirstSequenceDone = true
		}
	}
	next := now.Add(Delay(state.Stage, state.FirstSequenceDone))
	state.NextReminderAt = &next
	return state
}

// Scheduler: 리마인더 상태 저장 담당
type Scheduler struct {
	repo    *repository.Repository
	isAdmin func(userID int64) bool
	logger  *slog.Logger
}

// NewScheduler: isAdmin 이 true 인 사용자는 리마인더 대상에서 빠진다.
func NewScheduler(repo *repository.Repository, isAdmin func(int64) bool, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Scheduler{repo: repo, isAdmin: isAdmin, logger: logger}
}

// Touch: 활동 시각을 기록하고 현재 단계 기준으로 다음 발송 시각을 다시 잡는다. 단계는 바꾸지 않는다.
// 관리자이거나 아직 등록되지 않은 사용자는 무시한다.
func (s *Scheduler) Touch(ctx context.Context, userID int64, now time.Time) error {
	if s.isAdmin(userID) {
		return nil
	}
	if _, found, err := s.repo.GetUser(ctx, userID); err != nil || !found {
		return err
	}

	state, _, err := s.repo.GetReminder(ctx, userID)
	if err != nil {
		return err
	}
	now = now.UTC()
	if err := s.repo.TouchReminder(ctx, userID, now, now.Add(Delay(state.Stage, state.FirstSequenceDone))); err != nil {
		return fmt.Errorf("touch reminder failed: %w", err)
	}
	return nil
}

// Advance: 리마인더를 보낸 뒤 단계를 올리고 다음 발송 시각을 기록한다.
func (s *Scheduler) Advance(ctx context.Context, state model.ReminderState, now time.Time) (model.ReminderState, error) {
	next := Next(state, now.UTC())
	if err := s.repo.SaveReminderProgress(ctx, next); err != nil {
		return state, fmt.Errorf("advance reminder failed: %w", err)
	}
	return next, nil
}

// Stop: 사용자가 경품을 인벤토리로 가져간 뒤 리마인더를 끈다.
func (s *Scheduler) Stop(ctx context.Context, userID int64) error {
	if err := s.repo.ClearNextReminder(ctx, userID, true); err != nil {
		return fmt.Errorf("stop reminder failed: %w", err)
	}
	s.logger.Debug("reminder_stopped", "user_id", userID)
	return nil
}

// Pause: 봇이 차단되어 보낼 수 없을 때 발송을 멈춘다. 다음 Touch 에서 다시 잡힌다.
func (s *Scheduler) Pause(ctx context.Context, userID int64) error {
	if err := s.repo.ClearNextReminder(ctx, userID, false); err != nil {
		return fmt.Errorf("pause reminder failed: %w", err)
	}
	return nil
}

// Due: now 기준으로 발송할 차례인 리마인더 (limit <= 0 이면 제한 없음)
func (s *Scheduler) Due(ctx context.Context, now time.Time, limit int) ([]model.ReminderState, error) {
	return s.repo.DueReminders(ctx, now.UTC(), limit)
}
