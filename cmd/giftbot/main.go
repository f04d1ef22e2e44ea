package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/park285/gift-grid-bot/internal/common/bootstrap"
	commonconfig "github.com/park285/gift-grid-bot/internal/common/config"
	"github.com/park285/gift-grid-bot/internal/common/health"
	gapp "github.com/park285/gift-grid-bot/internal/giftbot/app"
	gconfig "github.com/park285/gift-grid-bot/internal/giftbot/config"
)

// Version: 빌드 시 ldflags로 주입됨 (예: -ldflags="-X main.Version=1.0.0")
var Version = "dev"

func main() {
	health.Init(Version)

	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	finalLogger, err := bootstrap.RunBotEntrypoint(
		context.Background(),
		logger,
		gconfig.LogFileName,
		gconfig.LoadFromEnv,
		func(cfg *gconfig.Config) (commonconfig.LogConfig, bool) { return cfg.Log, cfg.Telemetry.Enabled },
		gapp.Initialize,
	)
	if err != nil {
		logger = finalLogger
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
