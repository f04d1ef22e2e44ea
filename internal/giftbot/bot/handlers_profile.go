package bot

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/goccy/go-json"

	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// itemPayload: profile_item 화면과 함께 저장하는 payload
type itemPayload struct {
	InventoryID int64 `json:"inventoryId"`
}

func (b *Bot) handleProfile(ctx context.Context, req *request) error {
	attempts, err := b.repo.GetAttempts(ctx, req.userID)
	if err != nil {
		return err
	}
	items, err := b.repo.ListInventory(ctx, req.userID)
	if err != nil {
		return err
	}
	withdrawn := 0
	for _, item := range items {
		if item.Status == model.InventoryStatusWithdrawn {
			withdrawn++
		}
	}

	text := b.text(messages.ProfileHome,
		messageprovider.P("attempts", attempts),
		messageprovider.P("total", len(items)),
		messageprovider.P("withdrawn", withdrawn))
	_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenProfileHome, text, b.profileKeyboard()))
	return err
}

// handleInventory: 항목마다 상세 화면 버튼 한 줄
func (b *Bot) handleInventory(ctx context.Context, req *request) error {
	items, err := b.repo.ListInventory(ctx, req.userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenProfileInvEmpty, b.text(messages.ProfileInventoryEmpty), b.profileKeyboard()))
		return err
	}

	keyboard := make(ui.Keyboard, 0, len(items)+1)
	for _, item := range items {
		label := b.text(messages.ProfileInventoryItem,
			messageprovider.P("emoji", giftEmoji(item)),
			messageprovider.P("title", item.GiftTitle),
			messageprovider.P("status", b.statusLabel(item.Status)))
		keyboard = append(keyboard, ui.Row(ui.Callback(label, fmt.Sprintf("%s%d", cbProfileItemPrefix, item.ID))))
	}
	keyboard = append(keyboard, ui.Row(
		b.button(messages.ButtonProfileBack, cbMenuProfile),
		b.button(messages.ButtonMenu, cbMenuHome),
	))
	_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenProfileInv, b.text(messages.ProfileInventory), keyboard))
	return err
}

func (b *Bot) handleItem(ctx context.Context, req *request) error {
	itemID, err := parseID(req.data, cbProfileItemPrefix)
	if err != nil {
		return err
	}
	item, err := b.loadItem(ctx, req, itemID)
	if err != nil {
		return err
	}
	return b.showItem(ctx, req, item)
}

func (b *Bot) handleWithdraw(ctx context.Context, req *request) error {
	itemID, err := parseID(req.data, cbProfileWithdrawPrefix)
	if err != nil {
		return err
	}
	item, err := b.loadItem(ctx, req, itemID)
	if err != nil {
		return err
	}
	if item.Status != model.InventoryStatusWon {
		b.answer(ctx, req, b.text(messages.ProfileCannotWithdraw), true)
		return domainerrors.InvalidStatusTransitionError{
			ItemID: item.ID,
			From:   string(item.Status),
			To:     string(model.InventoryStatusWithdrawPending),
		}
	}

	text := b.text(messages.ProfileConfirm,
		messageprovider.P("emoji", giftEmoji(item)),
		messageprovider.P("title", html.EscapeString(item.GiftTitle)))
	keyboard := ui.Keyboard{
		ui.Row(b.button(messages.ButtonConfirmWithdraw, fmt.Sprintf("%s%d", cbProfileConfirmWithdrawPrefix, item.ID))),
		ui.Row(b.button(messages.ButtonCancel, fmt.Sprintf("%s%d", cbProfileItemPrefix, item.ID))),
	}
	screen := screenFor(req, model.ScreenProfileConfirm, text, keyboard)
	screen.Payload = b.itemPayload(item.ID)
	_, err = b.reconciler.Display(ctx, screen)
	return err
}

// handleConfirmWithdraw: won → withdraw_pending 전이 후 관리자 채팅과 사용자에게 알린다.
func (b *Bot) handleConfirmWithdraw(ctx context.Context, req *request) error {
	itemID, err := parseID(req.data, cbProfileConfirmWithdrawPrefix)
	if err != nil {
		return err
	}
	err = b.repo.TransitionInventoryStatus(ctx, itemID, req.userID,
		model.InventoryStatusWon, model.InventoryStatusWithdrawPending, b.now())
	if err != nil {
		if errors.As(err, new(domainerrors.InvalidStatusTransitionError)) || errors.As(err, new(domainerrors.NotFoundError)) {
			b.answer(ctx, req, b.text(messages.ProfileCannotWithdraw), true)
		}
		return err
	}

	item, err := b.repo.GetInventoryItem(ctx, itemID, req.userID)
	if err != nil {
		return err
	}
	b.logger.Info("withdraw_requested", "user_id", req.userID, "inventory_id", item.ID, "gift_id", item.GiftID)

	b.notifyWithdrawReview(ctx, req, item)
	if _, err := b.messenger.SendMessage(ctx, req.userID, b.text(messages.ProfileWithdrawSent), b.closeKeyboard()); err != nil {
		b.logger.Warn("withdraw_notice_send_failed", "user_id", req.userID, "err", err)
	}
	return b.showItem(ctx, req, item)
}

// notifyWithdrawReview: 검토 채팅이 설정되지 않았으면 아무것도 하지 않는다.
func (b *Bot) notifyWithdrawReview(ctx context.Context, req *request, item model.InventoryItem) {
	if b.admin.WithdrawReviewChatID == 0 {
		return
	}
	text := b.text(messages.AdminWithdrawRequest,
		messageprovider.P("user_id", req.userID),
		messageprovider.P("name", html.EscapeString(req.user.DisplayName(b.text(messages.CommonDefaultName)))),
		messageprovider.P("emoji", giftEmoji(item)),
		messageprovider.P("title", html.EscapeString(item.GiftTitle)),
		messageprovider.P("price", item.Price),
		messageprovider.P("id", item.ID),
		messageprovider.P("won_at", item.WonAt.Format(wonAtLayout)))
	keyboard := ui.Keyboard{ui.Row(b.button(messages.ButtonWithdrawn,
		fmt.Sprintf("%s%d:%d", cbAdminWithdrawDonePrefix, item.ID, req.userID)))}
	if _, err := b.messenger.SendMessage(ctx, b.admin.WithdrawReviewChatID, text, keyboard); err != nil {
		b.logger.Error("withdraw_review_send_failed", "user_id", req.userID, "inventory_id", item.ID, "err", err)
	}
}

func (b *Bot) handleCloseNotice(ctx context.Context, req *request) error {
	if err := b.messenger.DeleteMessage(ctx, req.chatID, req.messageID); err != nil {
		b.logger.Debug("notice_delete_failed", "user_id", req.userID, "message_id", req.messageID, "err", err)
	}
	return nil
}

func (b *Bot) loadItem(ctx context.Context, req *request, itemID int64) (model.InventoryItem, error) {
	item, err := b.repo.GetInventoryItem(ctx, itemID, req.userID)
	if errors.As(err, new(domainerrors.NotFoundError)) {
		b.answer(ctx, req, b.text(messages.ProfileItemNotFound), true)
	}
	return item, err
}

func (b *Bot) showItem(ctx context.Context, req *request, item model.InventoryItem) error {
	screen := screenFor(req, model.ScreenProfileItem, b.itemText(item), b.itemKeyboard(item))
	screen.Payload = b.itemPayload(item.ID)
	_, err := b.reconciler.Display(ctx, screen)
	return err
}

func (b *Bot) itemPayload(itemID int64) []byte {
	payload, err := json.Marshal(itemPayload{InventoryID: itemID})
	if err != nil {
		b.logger.Warn("ui_payload_encode_failed", "inventory_id", itemID, "err", err)
		return nil
	}
	return payload
}
