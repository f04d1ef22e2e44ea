package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// 보드 칸 표시
const (
	cellHidden       = "⬜"
	cellEmpty        = "❌"
	defaultGiftEmoji = "🎁"
)

// wonAtLayout: 인벤토리 날짜 표시 형식
const wonAtLayout = "02.01.2006 15:04"

func screenFor(req *request, tag, text string, keyboard ui.Keyboard) ui.Screen {
	return ui.Screen{
		UserID:   req.userID,
		ChatID:   req.chatID,
		Text:     text,
		Keyboard: keyboard,
		Tag:      tag,
	}
}

func (b *Bot) button(key, data string) ui.Button {
	return ui.Callback(b.text(key), data)
}

func (b *Bot) menuOnlyKeyboard() ui.Keyboard {
	return ui.Keyboard{ui.Row(b.button(messages.ButtonMenu, cbMenuHome))}
}

func (b *Bot) startKeyboard() ui.Keyboard {
	return ui.Keyboard{ui.Row(b.button(messages.ButtonChooseGift, cbStartChooseGift))}
}

func (b *Bot) menuKeyboard() ui.Keyboard {
	return ui.Keyboard{
		ui.Row(b.button(messages.ButtonPlay, cbMenuPlay), b.button(messages.ButtonTasks, cbMenuTasks)),
		ui.Row(b.button(messages.ButtonBuy, cbMenuBuy)),
		ui.Row(b.button(messages.ButtonRefs, cbMenuRefs)),
		ui.Row(b.button(messages.ButtonProfile, cbMenuProfile)),
	}
}

func (b *Bot) menuText(attempts int, settings model.Settings) string {
	return b.text(messages.MenuHome,
		messageprovider.P("attempts", attempts),
		messageprovider.P("price", settings.AttemptPrice))
}

// sponsorRows: 링크가 있는 스폰서마다 URL 버튼 한 줄
func (b *Bot) sponsorRows(sponsors []model.Sponsor) ui.Keyboard {
	rows := make(ui.Keyboard, 0, len(sponsors))
	for _, sponsor := range sponsors {
		link := sponsor.Link()
		if link == "" {
			continue
		}
		title := strings.TrimSpace(sponsor.Title)
		if title == "" {
			title = b.text(messages.ButtonSponsorDefaultTitle)
		}
		rows = append(rows, ui.Row(ui.Link(b.text(messages.ButtonSponsor, messageprovider.P("title", title)), link)))
	}
	return rows
}

// onboardingKeyboard: 링크가 하나도 없으면 확인/뒤로 버튼만 남는다.
func (b *Bot) onboardingKeyboard(sponsors []model.Sponsor) ui.Keyboard {
	rows := b.sponsorRows(sponsors)
	check := b.button(messages.ButtonCheckSubs, cbStartCheckSubs)
	if len(rows) == 0 {
		check = b.button(messages.ButtonSubscribed, cbStartCheckSubs)
	}
	return rows.Append(ui.Keyboard{
		ui.Row(check),
		ui.Row(b.button(messages.ButtonBack, cbStartBack)),
	})
}

func (b *Bot) tasksKeyboard(sponsors []model.Sponsor) ui.Keyboard {
	rows := b.sponsorRows(sponsors)
	if len(rows) == 0 {
		return b.menuOnlyKeyboard()
	}
	return rows.Append(ui.Keyboard{
		ui.Row(b.button(messages.ButtonCheckTasks, cbTasksCheckSubs)),
		ui.Row(b.button(messages.ButtonBack, cbMenuHome)),
	})
}

func cellButton(board model.Board, index int) ui.Button {
	if !board.Opened[index] {
		return ui.Callback(cellHidden, cbGameCellPrefix+strconv.Itoa(index))
	}
	gift := board.Gifts[index]
	if gift == nil {
		return ui.Callback(cellEmpty, cbGameNoop)
	}
	emoji := gift.Emoji
	if emoji == "" {
		emoji = defaultGiftEmoji
	}
	return ui.Callback(emoji, cbGameNoop)
}

// boardKeyboard: 6x6 칸 버튼 아래에 수령/메뉴 버튼을 붙인다.
func (b *Bot) boardKeyboard(session *model.GameSession) ui.Keyboard {
	keyboard := make(ui.Keyboard, 0, model.GridSize+2)
	for row := 0; row < model.GridSize; row++ {
		buttons := make([]ui.Button, 0, model.GridSize)
		for col := 0; col < model.GridSize; col++ {
			buttons = append(buttons, cellButton(session.Board, row*model.GridSize+col))
		}
		keyboard = append(keyboard, buttons)
	}
	if session.IsActive() && len(session.PendingWins) > 0 {
		keyboard = append(keyboard, ui.Row(b.button(messages.ButtonTake, cbGameTake)))
	}
	return append(keyboard, ui.Row(b.button(messages.ButtonMenu, cbMenuHome)))
}

func (b *Bot) boardText(attempts int, session *model.GameSession) string {
	return b.text(messages.GameBoard,
		messageprovider.P("attempts", attempts),
		messageprovider.P("pending", len(session.PendingWins)))
}

func (b *Bot) profileKeyboard() ui.Keyboard {
	keyboard := ui.Keyboard{ui.Row(b.button(messages.ButtonInventory, cbProfileInventory))}
	if url := strings.TrimSpace(b.admin.SupportURL); url != "" {
		keyboard = append(keyboard, ui.Row(ui.Link(b.text(messages.ButtonSupport), url)))
	}
	return append(keyboard, ui.Row(b.button(messages.ButtonMenu, cbMenuHome)))
}

func (b *Bot) statusLabel(status model.InventoryStatus) string {
	key := messages.ProfileStatusPrefix + string(status)
	if !b.messages.Has(key) {
		return string(status)
	}
	return b.text(key)
}

func giftEmoji(item model.InventoryItem) string {
	if item.GiftEmoji == "" {
		return defaultGiftEmoji
	}
	return item.GiftEmoji
}

func (b *Bot) itemText(item model.InventoryItem) string {
	return b.text(messages.ProfileItem,
		messageprovider.P("emoji", giftEmoji(item)),
		messageprovider.P("title", html.EscapeString(item.GiftTitle)),
		messageprovider.P("price", item.Price),
		messageprovider.P("id", item.ID),
		messageprovider.P("won_at", item.WonAt.Format(wonAtLayout)),
		messageprovider.P("status", b.statusLabel(item.Status)))
}

func (b *Bot) itemKeyboard(item model.InventoryItem) ui.Keyboard {
	keyboard := ui.Keyboard{}
	if item.Status == model.InventoryStatusWon {
		keyboard = append(keyboard, ui.Row(b.button(messages.ButtonWithdraw, fmt.Sprintf("%s%d", cbProfileWithdrawPrefix, item.ID))))
	}
	return append(keyboard, ui.Row(
		b.button(messages.ButtonInventory, cbProfileInventory),
		b.button(messages.ButtonMenu, cbMenuHome),
	))
}

func (b *Bot) closeKeyboard() ui.Keyboard {
	return ui.Keyboard{ui.Row(b.button(messages.ButtonClose, cbProfileCloseNotice))}
}
