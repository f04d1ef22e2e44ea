//go:build !wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/park285/gift-grid-bot/internal/common/bootstrap"
	gconfig "github.com/park285/gift-grid-bot/internal/giftbot/config"
)

// Initialize 는 giftbot 애플리케이션 의존성을 초기화하고 ServerApp을 반환한다.
func Initialize(ctx context.Context, cfg *gconfig.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	tracing, cleanupTelemetry, err := newGiftBotTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	msgProvider, err := newGiftBotMessageProvider()
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	dataValkeyClient, cleanupDataValkey, err := newGiftBotDataRedis(ctx, cfg, logger)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	stores := newGiftBotStores(cfg, dataValkeyClient, logger)

	db, cleanupDB, err := newGiftBotDB(ctx, cfg, logger)
	if err != nil {
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	repository, err := newGiftBotRepository(ctx, db)
	if err != nil {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	telegramClient, err := newGiftBotTelegramClient(cfg, logger)
	if err != nil {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	reconciler := newGiftBotReconciler(cfg, telegramClient, repository, logger)
	engine := newGiftBotEngine(repository, logger)
	gate := newGiftBotGate(cfg, repository, stores, telegramClient, logger)
	scheduler := newGiftBotScheduler(cfg, repository, logger)
	sweeper := newGiftBotSweeper(cfg, scheduler, telegramClient, msgProvider, logger)

	bot := newGiftBotBot(cfg, repository, reconciler, engine, gate, scheduler, telegramClient, stores, msgProvider, logger)
	poller := newGiftBotPoller(cfg, telegramClient, bot, logger)

	httpMux := newGiftBotHTTPMux(cfg, repository, logger)
	httpServer := newGiftBotHTTPServer(cfg, httpMux)

	serverApp := newGiftBotServerApp(cfg, logger, tracing, httpServer, poller, sweeper)

	cleanup := func() {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
	}

	return serverApp, cleanup, nil
}
