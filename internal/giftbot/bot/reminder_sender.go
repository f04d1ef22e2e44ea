package bot

import (
	"context"
	"strconv"

	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// ReminderSender: reminder.Sender 구현. 리마인더는 UI 메시지와 별개의 새 메시지로 보낸다.
// 메뉴 버튼을 누르면 handleMenuHome 이 그 메시지를 UI 메시지로 가져온다.
type ReminderSender struct {
	messenger ui.Messenger
	messages  *messageprovider.Provider
}

// NewReminderSender 는 ReminderSender 를 생성한다.
func NewReminderSender(messenger ui.Messenger, provider *messageprovider.Provider) *ReminderSender {
	return &ReminderSender{messenger: messenger, messages: provider}
}

// SendReminder: 현재 단계 문구로 보낸다.
func (s *ReminderSender) SendReminder(ctx context.Context, state model.ReminderState) error {
	keyboard := ui.Keyboard{ui.Row(ui.Callback(s.messages.Get(messages.ButtonMenu), cbMenuHome))}
	_, err := s.messenger.SendMessage(ctx, state.UserID, s.text(state.Stage), keyboard)
	return err
}

func (s *ReminderSender) text(stage int) string {
	key := messages.ReminderStagePrefix + strconv.Itoa(stage)
	if s.messages.Has(key) {
		return s.messages.Get(key)
	}
	return s.messages.Get(messages.ReminderDefault)
}
