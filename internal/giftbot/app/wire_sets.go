//go:build wireinject

package app

import "github.com/google/wire"

var giftBotProviderSet = wire.NewSet(
	newGiftBotTelemetry,
	newGiftBotMessageProvider,
	newGiftBotDataRedis,
	newGiftBotStores,
	newGiftBotDB,
	newGiftBotRepository,
	newGiftBotTelegramClient,
	newGiftBotReconciler,
	newGiftBotEngine,
	newGiftBotGate,
	newGiftBotScheduler,
	newGiftBotSweeper,
	newGiftBotBot,
	newGiftBotPoller,
	newGiftBotHTTPMux,
	newGiftBotHTTPServer,
	newGiftBotServerApp,
)
