package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/metrics"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
	"github.com/park285/gift-grid-bot/internal/giftbot/telegram"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

// 결제 payload 는 buy_attempt_{n} 형식이다.
const (
	buyPayloadPrefix      = "buy_attempt_"
	maxAttemptsPerPayment = 100
)

func buyPayload(attempts int) string {
	return buyPayloadPrefix + strconv.Itoa(attempts)
}

// parseBuyPayload: 지급할 시도 수
func parseBuyPayload(payload string) (int, error) {
	raw, ok := strings.CutPrefix(payload, buyPayloadPrefix)
	if !ok {
		return 0, cerrors.MalformedInputError{Message: "unknown payment payload: " + payload}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxAttemptsPerPayment {
		return 0, cerrors.MalformedInputError{Message: "invalid payment payload: " + payload}
	}
	return n, nil
}

// handleBuy: 시도 1회 가격으로 Stars 결제 요청서를 보낸다.
func (b *Bot) handleBuy(ctx context.Context, req *request) error {
	settings, err := b.settings(ctx)
	if err != nil {
		return err
	}
	_, err = b.messenger.SendInvoice(ctx, req.userID, telegram.Invoice{
		Title:       b.text(messages.BuyInvoiceTitle),
		Description: b.text(messages.BuyInvoiceDescription),
		Payload:     buyPayload(1),
		Label:       b.text(messages.BuyInvoiceLabel),
		Amount:      settings.AttemptPrice,
	})
	if err != nil {
		return err
	}
	b.logger.Debug("invoice_sent", "user_id", req.userID, "amount", settings.AttemptPrice)
	return nil
}

// handlePreCheckout: 통화, payload, 금액이 현재 가격과 맞을 때만 승인한다.
func (b *Bot) handlePreCheckout(ctx context.Context, q *tgbotapi.PreCheckoutQuery) error {
	reject := func(cause error) error {
		if err := b.messenger.AnswerPreCheckout(ctx, q.ID, false, b.text(messages.CommonError)); err != nil {
			return err
		}
		return cause
	}

	if q.From == nil {
		return reject(cerrors.MalformedInputError{Message: "pre-checkout without sender"})
	}
	if q.Currency != telegram.StarsCurrency {
		return reject(cerrors.MalformedInputError{Message: "unexpected currency: " + q.Currency})
	}
	attempts, err := parseBuyPayload(q.InvoicePayload)
	if err != nil {
		return reject(err)
	}
	banned, err := b.repo.IsBanned(ctx, q.From.ID)
	if err != nil {
		return reject(err)
	}
	if banned {
		return reject(cerrors.UserBlockedError{UserID: q.From.ID})
	}
	settings, err := b.settings(ctx)
	if err != nil {
		return reject(err)
	}
	if q.TotalAmount != attempts*settings.AttemptPrice {
		return reject(cerrors.MalformedInputError{
			Message: fmt.Sprintf("amount mismatch: got %d want %d", q.TotalAmount, attempts*settings.AttemptPrice),
		})
	}
	return b.messenger.AnswerPreCheckout(ctx, q.ID, true, "")
}

// handleSuccessfulPayment: charge_id 기준으로 한 번만 시도를 지급한다.
func (b *Bot) handleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) error {
	payment := msg.SuccessfulPayment
	if msg.From == nil || msg.Chat == nil || payment == nil {
		return nil
	}
	userID := msg.From.ID
	if payment.Currency != telegram.StarsCurrency {
		b.logger.Warn("payment_unexpected_currency", "user_id", userID, "currency", payment.Currency)
		return cerrors.MalformedInputError{Message: "unexpected currency: " + payment.Currency}
	}
	attempts, err := parseBuyPayload(payment.InvoicePayload)
	if err != nil {
		b.logger.Warn("payment_unknown_payload", "user_id", userID, "payload", payment.InvoicePayload)
		return err
	}
	if _, _, err := b.repo.UpsertUser(ctx, profileOf(msg.From)); err != nil {
		return err
	}

	// 사용자 락 없이 처리한다. charge_id 유일 제약이 중복 지급을 막는다.
	credited, _, err := b.repo.RecordPayment(ctx, repository.PaymentRecord{
		ChargeID: payment.TelegramPaymentChargeID,
		UserID:   userID,
		Payload:  payment.InvoicePayload,
		Currency: payment.Currency,
		Amount:   payment.TotalAmount,
		Attempts: attempts,
	})
	if err != nil {
		return err
	}

	if !credited {
		b.logger.Info("payment_duplicate", "user_id", userID, "charge_id", payment.TelegramPaymentChargeID)
		_, err = b.messenger.SendMessage(ctx, msg.Chat.ID, b.text(messages.BuyPaymentDuplicate), nil)
		return err
	}

	metrics.PaymentsCredited.Add(float64(attempts))
	b.logger.Info("payment_credited", "user_id", userID, "charge_id", payment.TelegramPaymentChargeID,
		"amount", payment.TotalAmount, "attempts", attempts)
	text := b.text(messages.BuyPaymentOK, messageprovider.P("attempts", attempts))
	keyboard := ui.Keyboard{ui.Row(b.button(messages.ButtonMenu, cbMenuHomeNew))}
	_, err = b.messenger.SendMessage(ctx, msg.Chat.ID, text, keyboard)
	return err
}

// handleJoinRequest: 온보딩 채널 가입 신청을 24시간 대체 확인 용도로 기록한다.
func (b *Bot) handleJoinRequest(ctx context.Context, jr *tgbotapi.ChatJoinRequest) error {
	at := time.Unix(int64(jr.Date), 0).UTC()
	_, err := b.gate.RecordJoinRequest(ctx, jr.From.ID, jr.Chat.ID, at)
	return err
}
