// Package bot 은 텔레그램 업데이트를 화면 핸들러로 라우팅한다.
// 모든 사용자 상호작용은 차단 확인 → 메시지 정리 → 활동 기록 → 사용자 락 → 온보딩 게이트 순서를 거친다.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/common/userlock"
	"github.com/park285/gift-grid-bot/internal/giftbot/config"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/game"
	"github.com/park285/gift-grid-bot/internal/giftbot/metrics"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/reminder"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
	"github.com/park285/gift-grid-bot/internal/giftbot/sponsor"
	"github.com/park285/gift-grid-bot/internal/giftbot/telegram"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// Messenger: 핸들러가 사용하는 Bot API 호출
type Messenger interface {
	ui.Messenger
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	SendInvoice(ctx context.Context, chatID int64, invoice telegram.Invoice) (int, error)
	AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error
}

// Locker: 사용자 단위 배타 실행
type Locker interface {
	WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error
}

// Deps: Bot 구성 요소
type Deps struct {
	Repo       *repository.Repository
	Reconciler *ui.Reconciler
	Engine     *game.Engine
	Gate       *sponsor.Gate
	Scheduler  *reminder.Scheduler
	Messenger  Messenger
	Locker     Locker // nil 이면 락 없이 실행
	Messages   *messageprovider.Provider
	Admin      config.AdminConfig
	Game       config.GameConfig
	Logger     *slog.Logger
	Now        func() time.Time
}

// Bot: 업데이트 라우터. telegram.UpdateHandler 를 구현한다.
type Bot struct {
	repo       *repository.Repository
	reconciler *ui.Reconciler
	engine     *game.Engine
	gate       *sponsor.Gate
	scheduler  *reminder.Scheduler
	messenger  Messenger
	locker     Locker
	messages   *messageprovider.Provider
	admin      config.AdminConfig
	game       config.GameConfig
	logger     *slog.Logger
	now        func() time.Time

	exact  map[string]handlerFunc
	prefix []prefixRoute
}

// New 는 Bot 을 생성하고 콜백 라우트를 등록한다.
func New(deps Deps) *Bot {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	b := &Bot{
		repo:       deps.Repo,
		reconciler: deps.Reconciler,
		engine:     deps.Engine,
		gate:       deps.Gate,
		scheduler:  deps.Scheduler,
		messenger:  deps.Messenger,
		locker:     deps.Locker,
		messages:   deps.Messages,
		admin:      deps.Admin,
		game:       deps.Game,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	b.registerRoutes()
	return b
}

// HandleUpdate: 업데이트 하나를 처리한다. 에러는 로그와 메트릭으로만 남긴다.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var (
		kind string
		err  error
	)
	switch {
	case update.CallbackQuery != nil:
		kind = "callback"
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		kind = "payment"
		err = b.handleSuccessfulPayment(ctx, update.Message)
	case update.Message != nil:
		kind = "message"
		err = b.handleMessage(ctx, update.Message)
	case update.PreCheckoutQuery != nil:
		kind = "pre_checkout"
		err = b.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.ChatJoinRequest != nil:
		kind = "join_request"
		err = b.handleJoinRequest(ctx, update.ChatJoinRequest)
	default:
		return
	}

	metrics.UpdatesHandled.WithLabelValues(kind, b.logOutcome(kind, update.UpdateID, err)).Inc()
}

func (b *Bot) logOutcome(kind string, updateID int, err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, userlock.ErrBusy):
		b.logger.Debug("update_user_busy", "kind", kind, "update_id", updateID)
		return "busy"
	case domainerrors.IsPermissionRevoked(err):
		b.logger.Info("update_user_blocked_bot", "kind", kind, "update_id", updateID, "err", err)
		return "revoked"
	case domainerrors.IsExpectedUserBehavior(err):
		b.logger.Debug("update_rejected", "kind", kind, "update_id", updateID, "err", err)
		return "rejected"
	default:
		b.logger.Error("update_failed", "kind", kind, "update_id", updateID, "err", err)
		return "error"
	}
}

// settings: settings 테이블 값을 설정 기본값 위에 덮어쓴 스냅샷
func (b *Bot) settings(ctx context.Context) (model.Settings, error) {
	return b.repo.LoadSettings(ctx, model.Settings{
		RevealProbability: b.game.DefaultRevealProbability,
		AttemptPrice:      b.game.DefaultAttemptPrice,
	})
}

func (b *Bot) text(key string, params ...messageprovider.Param) string {
	return b.messages.Get(key, params...)
}

func (b *Bot) withLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	if b.locker == nil {
		return fn(ctx)
	}
	return b.locker.WithLock(ctx, userID, fn)
}

func isLockBusy(err error) bool {
	return errors.Is(err, userlock.ErrBusy) || errors.As(err, new(cerrors.LockError))
}
