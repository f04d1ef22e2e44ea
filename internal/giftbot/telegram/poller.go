package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sourcegraph/conc/pool"
)

// AllowedUpdates: 수신할 업데이트 종류
var AllowedUpdates = []string{"message", "callback_query", "pre_checkout_query", "chat_join_request"}

// UpdateHandler: 업데이트 하나를 처리한다.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Poller: long polling 으로 업데이트를 받아 제한된 워커 풀에서 처리한다.
type Poller struct {
	api     *tgbotapi.BotAPI
	handler UpdateHandler
	logger  *slog.Logger
	timeout int
	workers int
}

// NewPoller 는 Poller 를 생성한다.
func NewPoller(client *Client, handler UpdateHandler, logger *slog.Logger, timeoutSeconds, workers int) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 10
	}
	return &Poller{api: client.API(), handler: handler, logger: logger, timeout: timeoutSeconds, workers: workers}
}

// Run: ctx 가 끝날 때까지 업데이트를 처리한다. 종료 시 진행 중인 처리를 기다린다.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = AllowedUpdates
	updates := p.api.GetUpdatesChan(cfg)

	workers := pool.New().WithMaxGoroutines(p.workers)
	p.logger.Info("update_poller_started", "workers", p.workers, "timeout", p.timeout)

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			workers.Wait()
			p.logger.Info("update_poller_stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				workers.Wait()
				return nil
			}
			workers.Go(func() {
				p.handler.HandleUpdate(ctx, update)
			})
		}
	}
}
