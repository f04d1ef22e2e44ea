// Package telegram 은 Bot API 호출을 감싸 ui.Messenger, sponsor.MembershipChecker 를 구현한다.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/park285/gift-grid-bot/internal/giftbot/config"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// StarsCurrency: Telegram Stars 결제 통화
const StarsCurrency = "XTR"

// Client: Bot API 어댑터
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewClient: 토큰으로 getMe 를 호출해 봇을 인증한다.
func NewClient(cfg config.TelegramConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := strings.TrimSpace(cfg.APIEndpoint)
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	// long polling 요청이 PollTimeout 동안 열려 있으므로 그만큼 여유를 둔다.
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Duration(cfg.PollTimeout)*time.Second + cfg.CallTimeout,
	}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram bot auth failed: %w", err)
	}
	logger.Info("telegram_bot_authorized", "username", api.Self.UserName, "bot_id", api.Self.ID)

	return &Client{api: api, logger: logger}, nil
}

// API: 폴러에서 쓰는 원본 BotAPI
func (c *Client) API() *tgbotapi.BotAPI {
	return c.api
}

// call: tgbotapi 는 context 를 받지 않으므로 ctx 만료 시 결과를 기다리지 않고 반환한다.
// 남은 요청은 HTTP 클라이언트 타임아웃으로 끝난다.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

// classify: Bot API 에러를 도메인 에러로 변환한다.
func classify(chatID int64, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusForbidden:
			return domainerrors.PermissionRevokedError{ChatID: chatID, Err: err}
		case strings.Contains(apiErr.Message, "message is not modified"):
			return fmt.Errorf("%w: %s", domainerrors.ErrMessageNotModified, apiErr.Message)
		}
	}
	return err
}

func inlineMarkup(keyboard ui.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(keyboard) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			if button.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(button.Text, button.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// SendMessage: HTML 메시지를 보내고 메시지 ID 를 반환한다.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard ui.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup := inlineMarkup(keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := call(ctx, func() (tgbotapi.Message, error) { return c.api.Send(msg) })
	if err != nil {
		return 0, classify(chatID, err)
	}
	return sent.MessageID, nil
}

// EditMessage: 메시지 본문과 키보드를 교체한다.
func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard ui.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = inlineMarkup(keyboard)

	_, err := call(ctx, func() (*tgbotapi.APIResponse, error) { return c.api.Request(edit) })
	return classify(chatID, err)
}

// DeleteMessage: 메시지를 지운다.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := call(ctx, func() (*tgbotapi.APIResponse, error) {
		return c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	})
	return classify(chatID, err)
}

// AnswerCallback: 콜백 로딩 표시를 끝낸다. alert 이면 팝업으로 보여준다.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	_, err := call(ctx, func() (*tgbotapi.APIResponse, error) { return c.api.Request(cfg) })
	return err
}

// ChatMemberStatus: 채널에서의 사용자 상태 (creator, administrator, member, left, kicked, restricted)
func (c *Client) ChatMemberStatus(ctx context.Context, channelID, userID int64) (string, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: channelID, UserID: userID},
	}
	member, err := call(ctx, func() (tgbotapi.ChatMember, error) { return c.api.GetChatMember(cfg) })
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

// Invoice: Stars 결제 요청서
type Invoice struct {
	Title       string
	Description string
	Payload     string
	Label       string
	Amount      int
}

// SendInvoice: XTR 결제 요청서를 보낸다. Stars 결제는 provider token 이 비어 있어야 한다.
func (c *Client) SendInvoice(ctx context.Context, chatID int64, invoice Invoice) (int, error) {
	cfg := tgbotapi.NewInvoice(chatID, invoice.Title, invoice.Description, invoice.Payload, "", "", StarsCurrency,
		[]tgbotapi.LabeledPrice{{Label: invoice.Label, Amount: invoice.Amount}})
	cfg.SuggestedTipAmounts = []int{}

	sent, err := call(ctx, func() (tgbotapi.Message, error) { return c.api.Send(cfg) })
	if err != nil {
		return 0, classify(chatID, err)
	}
	return sent.MessageID, nil
}

// AnswerPreCheckout: 결제 직전 확인에 응답한다.
func (c *Client) AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	cfg := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: queryID, OK: ok, ErrorMessage: errorMessage}
	_, err := call(ctx, func() (*tgbotapi.APIResponse, error) { return c.api.Request(cfg) })
	return err
}
