package bot

import (
	"context"
	"strconv"
	"strings"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// handleWithdrawDone: 검토 채팅의 "выведено" 버튼. 데이터 형식은 admin:withdraw_done:{inventoryID}:{userID}.
func (b *Bot) handleWithdrawDone(ctx context.Context, req *request) error {
	if !b.admin.IsAdmin(req.userID) {
		b.logger.Debug("admin_callback_denied", "user_id", req.userID, "data", req.data)
		return nil
	}

	itemID, ownerID, err := parseWithdrawDone(req.data)
	if err != nil {
		return err
	}
	err = b.repo.TransitionInventoryStatus(ctx, itemID, ownerID,
		model.InventoryStatusWithdrawPending, model.InventoryStatusWithdrawn, b.now())
	if err != nil {
		b.answer(ctx, req, err.Error(), true)
		return err
	}
	b.logger.Info("withdraw_completed", "admin_id", req.userID, "user_id", ownerID, "inventory_id", itemID)
	b.answer(ctx, req, b.text(messages.AdminWithdrawDone), false)

	if _, err := b.messenger.SendMessage(ctx, ownerID, b.text(messages.AdminWithdrawnNotice), b.closeKeyboard()); err != nil {
		b.logger.Warn("withdrawn_notice_send_failed", "user_id", ownerID, "err", err)
	}
	return nil
}

func parseWithdrawDone(data string) (itemID, userID int64, err error) {
	parts := strings.Split(strings.TrimPrefix(data, cbAdminWithdrawDonePrefix), ":")
	if len(parts) != 2 {
		return 0, 0, cerrors.MalformedInputError{Message: "malformed callback data: " + data}
	}
	itemID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, cerrors.MalformedInputError{Message: "malformed callback data: " + data}
	}
	userID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, cerrors.MalformedInputError{Message: "malformed callback data: " + data}
	}
	return itemID, userID, nil
}
