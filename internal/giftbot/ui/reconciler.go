// Package ui 는 사용자당 메시지 하나만 살아있게 유지하는 표시 프로토콜(Reconciler)을 구현한다.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/metrics"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// Messenger: 메시지 전송/편집 협력자.
// EditMessage 는 내용이 같으면 ErrMessageNotModified, 사용자가 봇을 차단했으면 PermissionRevokedError 를 반환해야 한다.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error
}

// StateStore: ui_states 저장소
type StateStore interface {
	GetUIState(ctx context.Context, userID int64) (model.UIState, bool, error)
	SaveUIState(ctx context.Context, state model.UIState) error
}

// Screen: 표시할 화면과 함께 저장할 (tag, payload)
type Screen struct {
	UserID   int64
	ChatID   int64
	Text     string
	Keyboard Keyboard
	Tag      string
	Payload  []byte
}

// Reconciler: 사용자별 단일 UI 메시지 관리자
type Reconciler struct {
	messenger   Messenger
	store       StateStore
	logger      *slog.Logger
	callTimeout time.Duration
}

// NewReconciler: callTimeout 은 전송/편집 호출 하나당 제한 시간이다.
func NewReconciler(messenger Messenger, store StateStore, logger *slog.Logger, callTimeout time.Duration) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Reconciler{messenger: messenger, store: store, logger: logger, callTimeout: callTimeout}
}

// Display: 저장된 메시지를 제자리에서 편집하고, 불가능하면 새로 보낸다.
// 반환값은 현재 UI 메시지 ID 다. 사용자가 봇을 차단했으면 PermissionRevokedError 를 그대로 반환한다.
func (r *Reconciler) Display(ctx context.Context, screen Screen) (int, error) {
	state, found, err := r.store.GetUIState(ctx, screen.UserID)
	if err != nil {
		return 0, fmt.Errorf("load ui state failed: %w", err)
	}

	if found && state.ChatID == screen.ChatID && state.MessageID != 0 {
		editErr := r.edit(ctx, screen.ChatID, state.MessageID, screen)
		switch {
		case editErr == nil:
			metrics.ReconcilerOutcomes.WithLabelValues("edited").Inc()
			return r.persist(ctx, screen, state.MessageID)
		case errors.Is(editErr, domainerrors.ErrMessageNotModified):
			metrics.ReconcilerOutcomes.WithLabelValues("not_modified").Inc()
			return r.persist(ctx, screen, state.MessageID)
		case domainerrors.IsPermissionRevoked(editErr):
			metrics.ReconcilerOutcomes.WithLabelValues("revoked").Inc()
			return 0, editErr
		default:
			r.logger.Info("reconciler_fallback_send",
				"user_id", screen.UserID,
				"chat_id", screen.ChatID,
				"message_id", state.MessageID,
				"screen", screen.Tag,
				"err", editErr,
			)
			metrics.ReconcilerOutcomes.WithLabelValues("recreated").Inc()
		}
	}

	return r.sendAndPersist(ctx, screen)
}

// Adopt: 다른 메시지(예: 리마인더)에서 들어온 동작일 때 그 메시지를 편집해 UI 를 옮긴다.
// 편집이 불가능하면 Display 로 처리한다.
func (r *Reconciler) Adopt(ctx context.Context, screen Screen, messageID int) (int, error) {
	if messageID == 0 {
		return r.Display(ctx, screen)
	}
	err := r.edit(ctx, screen.ChatID, messageID, screen)
	switch {
	case err == nil, errors.Is(err, domainerrors.ErrMessageNotModified):
		metrics.ReconcilerOutcomes.WithLabelValues("adopted").Inc()
		return r.persist(ctx, screen, messageID)
	case domainerrors.IsPermissionRevoked(err):
		metrics.ReconcilerOutcomes.WithLabelValues("revoked").Inc()
		return 0, err
	default:
		r.logger.Debug("reconciler_adopt_failed", "user_id", screen.UserID, "message_id", messageID, "err", err)
		return r.Display(ctx, screen)
	}
}

// Recreate: 항상 새 메시지를 보내고 UI 를 그 메시지로 옮긴다.
func (r *Reconciler) Recreate(ctx context.Context, screen Screen) (int, error) {
	return r.sendAndPersist(ctx, screen)
}

// IsCurrent: messageID 가 저장된 현재 UI 메시지인지 확인한다.
func (r *Reconciler) IsCurrent(ctx context.Context, userID, chatID int64, messageID int) (bool, error) {
	state, found, err := r.store.GetUIState(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load ui state failed: %w", err)
	}
	return found && state.ChatID == chatID && state.MessageID == messageID, nil
}

func (r *Reconciler) edit(ctx context.Context, chatID int64, messageID int, screen Screen) error {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return r.messenger.EditMessage(callCtx, chatID, messageID, screen.Text, screen.Keyboard)
}

func (r *Reconciler) sendAndPersist(ctx context.Context, screen Screen) (int, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	messageID, err := r.messenger.SendMessage(callCtx, screen.ChatID, screen.Text, screen.Keyboard)
	cancel()
	if err != nil {
		if domainerrors.IsPermissionRevoked(err) {
			metrics.ReconcilerOutcomes.WithLabelValues("revoked").Inc()
			return 0, err
		}
		metrics.ReconcilerOutcomes.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("send ui message failed: %w", err)
	}
	metrics.ReconcilerOutcomes.WithLabelValues("sent").Inc()
	return r.persist(ctx, screen, messageID)
}

func (r *Reconciler) persist(ctx context.Context, screen Screen, messageID int) (int, error) {
	if err := r.store.SaveUIState(ctx, model.UIState{
		UserID:    screen.UserID,
		ChatID:    screen.ChatID,
		MessageID: messageID,
		Screen:    screen.Tag,
		Payload:   screen.Payload,
	}); err != nil {
		return 0, fmt.Errorf("save ui state failed: %w", err)
	}
	return messageID, nil
}
