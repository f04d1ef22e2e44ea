//go:build wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/park285/gift-grid-bot/internal/common/bootstrap"
	gconfig "github.com/park285/gift-grid-bot/internal/giftbot/config"
)

//go:generate go run github.com/google/wire/cmd/wire@v0.7.0
func Initialize(
	ctx context.Context,
	cfg *gconfig.Config,
	logger *slog.Logger,
) (*bootstrap.ServerApp, func(), error) {
	wire.Build(
		giftBotProviderSet,
	)
	return nil, nil, nil
}
