package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
)

// 콜백 데이터
const (
	cbStartBack       = "start:back"
	cbStartChooseGift = "start:choose_gift"
	cbStartCheckSubs  = "start:check_subs"

	cbMenuHome    = "menu:home"
	cbMenuHomeNew = "menu:home_new"
	cbMenuPlay    = "menu:play"
	cbMenuTasks   = "menu:tasks"
	cbMenuBuy     = "menu:buy1"
	cbMenuRefs    = "menu:refs_stub"
	cbMenuProfile = "menu:profile"

	cbTasksCheckSubs = "tasks:check_subs"

	cbGameCellPrefix = "game:cell:"
	cbGameTake       = "game:take"
	cbGameNoop       = "game:noop"

	cbProfileInventory             = "profile:inventory"
	cbProfileItemPrefix            = "profile:item:"
	cbProfileWithdrawPrefix        = "profile:withdraw:"
	cbProfileConfirmWithdrawPrefix = "profile:confirm_withdraw:"
	cbProfileCloseNotice           = "profile:close_notice"

	cbAdminWithdrawDonePrefix = "admin:withdraw_done:"
)

// 구독 확인 전에도 허용하는 콜백
var onboardingExempt = map[string]bool{
	cbStartCheckSubs:  true,
	cbStartChooseGift: true,
	cbStartBack:       true,
	cbTasksCheckSubs:  true,
}

// request: 상호작용 하나의 정규화된 입력
type request struct {
	userID     int64
	chatID     int64
	messageID  int
	callbackID string
	data       string
	text       string
	profile    repository.UserProfile

	user     model.User
	created  bool
	answered bool
}

func (r *request) isStartCommand() bool {
	return strings.HasPrefix(r.text, "/start")
}

type handlerFunc func(ctx context.Context, req *request) error

type prefixRoute struct {
	prefix  string
	handler handlerFunc
}

func (b *Bot) registerRoutes() {
	b.exact = map[string]handlerFunc{
		cbStartBack:          b.handleStartBack,
		cbStartChooseGift:    b.handleChooseGift,
		cbStartCheckSubs:     b.handleCheckSubs,
		cbMenuHome:           b.handleMenuHome,
		cbMenuHomeNew:        b.handleMenuHomeNew,
		cbMenuRefs:           b.handleRefsStub,
		cbMenuTasks:          b.handleTasks,
		cbTasksCheckSubs:     b.handleTasksCheck,
		cbMenuPlay:           b.handlePlay,
		cbGameTake:           b.handleTake,
		cbGameNoop:           b.handleNoop,
		cbMenuProfile:        b.handleProfile,
		cbProfileInventory:   b.handleInventory,
		cbProfileCloseNotice: b.handleCloseNotice,
		cbMenuBuy:            b.handleBuy,
	}
	// 긴 접두사가 먼저 와야 한다.
	b.prefix = []prefixRoute{
		{prefix: cbGameCellPrefix, handler: b.handleCell},
		{prefix: cbProfileConfirmWithdrawPrefix, handler: b.handleConfirmWithdraw},
		{prefix: cbProfileWithdrawPrefix, handler: b.handleWithdraw},
		{prefix: cbProfileItemPrefix, handler: b.handleItem},
		{prefix: cbAdminWithdrawDonePrefix, handler: b.handleWithdrawDone},
	}
}

func (b *Bot) route(data string) handlerFunc {
	if handler, ok := b.exact[data]; ok {
		return handler
	}
	for _, route := range b.prefix {
		if strings.HasPrefix(data, route.prefix) {
			return route.handler
		}
	}
	return nil
}

func profileOf(user *tgbotapi.User) repository.UserProfile {
	return repository.UserProfile{
		ID:        user.ID,
		Username:  user.UserName,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil {
		return nil
	}
	req := &request{
		userID:     cb.From.ID,
		chatID:     cb.From.ID,
		callbackID: cb.ID,
		data:       cb.Data,
		profile:    profileOf(cb.From),
	}
	if cb.Message != nil && cb.Message.Chat != nil {
		req.chatID = cb.Message.Chat.ID
		req.messageID = cb.Message.MessageID
	}
	// 버튼의 로딩 표시는 처리 결과와 상관없이 끝낸다.
	defer b.finishCallback(ctx, req)

	handler := b.route(req.data)
	if handler == nil {
		b.logger.Debug("callback_unknown", "user_id", req.userID, "data", req.data)
		return nil
	}
	exempt := onboardingExempt[req.data] || strings.HasPrefix(req.data, cbAdminWithdrawDonePrefix)
	return b.dispatch(ctx, req, handler, exempt)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return nil
	}
	req := &request{
		userID:    msg.From.ID,
		chatID:    msg.Chat.ID,
		messageID: msg.MessageID,
		text:      msg.Text,
		profile:   profileOf(msg.From),
	}

	var handler handlerFunc
	if msg.IsCommand() && msg.Command() == "start" {
		handler = b.handleStart
	}
	return b.dispatch(ctx, req, handler, req.isStartCommand())
}

// dispatch: 공통 처리 순서를 적용한 뒤 handler 를 실행한다. handler 가 nil 이면 게이트까지만 적용한다.
func (b *Bot) dispatch(ctx context.Context, req *request, handler handlerFunc, gateExempt bool) error {
	user, created, err := b.repo.UpsertUser(ctx, req.profile)
	if err != nil {
		return err
	}
	req.user, req.created = user, created

	if user.Banned {
		return b.rejectBanned(ctx, req)
	}
	if req.callbackID == "" {
		b.cleanupUserMessage(ctx, req)
	}
	if err := b.scheduler.Touch(ctx, req.userID, b.now()); err != nil {
		b.logger.Warn("reminder_touch_failed", "user_id", req.userID, "err", err)
	}

	err = b.withLock(ctx, req.userID, func(ctx context.Context) error {
		if !gateExempt && !b.admin.IsAdmin(req.userID) {
			passed, err := b.enforceOnboarding(ctx, req)
			if err != nil || !passed {
				return err
			}
		}
		if handler == nil {
			return nil
		}
		return handler(ctx, req)
	})
	if err != nil && isLockBusy(err) {
		b.answer(ctx, req, b.text(messages.CommonBusy), false)
	}
	return err
}

func (b *Bot) rejectBanned(ctx context.Context, req *request) error {
	b.answer(ctx, req, "", false)
	if _, err := b.messenger.SendMessage(ctx, req.userID, b.text(messages.CommonBanned), nil); err != nil {
		return err
	}
	return cerrors.UserBlockedError{UserID: req.userID}
}

// cleanupUserMessage: 고정된 첫 /start 메시지 외의 사용자 메시지를 지운다. 핸들러는 계속 실행된다.
func (b *Bot) cleanupUserMessage(ctx context.Context, req *request) {
	pinned := req.user.StartMessageID
	if pinned == nil || *pinned == req.messageID {
		return
	}
	if err := b.messenger.DeleteMessage(ctx, req.chatID, req.messageID); err != nil {
		b.logger.Debug("user_message_delete_failed", "user_id", req.userID, "message_id", req.messageID, "err", err)
	}
}

// answer: 콜백에 한 번만 응답한다. 메시지 업데이트에서는 아무것도 하지 않는다.
func (b *Bot) answer(ctx context.Context, req *request, text string, alert bool) {
	if req.callbackID == "" || req.answered {
		return
	}
	req.answered = true
	if err := b.messenger.AnswerCallback(ctx, req.callbackID, text, alert); err != nil {
		b.logger.Debug("callback_answer_failed", "user_id", req.userID, "err", err)
	}
}

func (b *Bot) finishCallback(ctx context.Context, req *request) {
	b.answer(context.WithoutCancel(ctx), req, "", false)
}

// parseID: 접두사 뒤의 정수 ID
func parseID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, cerrors.MalformedInputError{Message: "malformed callback data: " + data}
	}
	return id, nil
}
