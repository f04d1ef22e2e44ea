package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/park285/gift-grid-bot/internal/common/bootstrap"
	"github.com/park285/gift-grid-bot/internal/common/dbutil"
	"github.com/park285/gift-grid-bot/internal/common/di"
	"github.com/park285/gift-grid-bot/internal/common/httpserver"
	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/common/telemetry"
	"github.com/park285/gift-grid-bot/internal/common/userlock"
	gassets "github.com/park285/gift-grid-bot/internal/giftbot/assets"
	gbot "github.com/park285/gift-grid-bot/internal/giftbot/bot"
	gconfig "github.com/park285/gift-grid-bot/internal/giftbot/config"
	"github.com/park285/gift-grid-bot/internal/giftbot/game"
	ghttpapi "github.com/park285/gift-grid-bot/internal/giftbot/httpapi"
	gredis "github.com/park285/gift-grid-bot/internal/giftbot/redis"
	"github.com/park285/gift-grid-bot/internal/giftbot/reminder"
	grepo "github.com/park285/gift-grid-bot/internal/giftbot/repository"
	"github.com/park285/gift-grid-bot/internal/giftbot/sponsor"
	"github.com/park285/gift-grid-bot/internal/giftbot/telegram"
	"github.com/park285/gift-grid-bot/internal/giftbot/ui"
)

const telemetryShutdownTimeout = 5 * time.Second

type giftBotStores struct {
	locker     *userlock.Locker
	membership *gredis.MembershipCache
}

func newGiftBotStores(cfg *gconfig.Config, client di.DataValkeyClient, logger *slog.Logger) *giftBotStores {
	return &giftBotStores{
		locker:     userlock.New(client.Client, logger, gredis.UserLockKey, cfg.UserLock.TTL),
		membership: gredis.NewMembershipCache(client.Client, logger, cfg.Sponsor.MembershipCacheTTL),
	}
}

func newGiftBotTelemetry(ctx context.Context, cfg *gconfig.Config, logger *slog.Logger) (*telemetry.Provider, func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("telemetry_shutdown_failed", "err", shutdownErr)
		}
	}
	return provider, cleanup, nil
}

func newGiftBotMessageProvider() (*messageprovider.Provider, error) {
	provider, err := messageprovider.NewFromYAMLAtPath(gassets.MessagesYAML, gconfig.MessagesLocale)
	if err != nil {
		return nil, fmt.Errorf("load messages failed: %w", err)
	}
	return provider, nil
}

func newGiftBotDataRedis(ctx context.Context, cfg *gconfig.Config, logger *slog.Logger) (di.DataValkeyClient, func(), error) {
	return bootstrap.NewAndPingDataValkeyClient(ctx, cfg.Redis, logger)
}

func newGiftBotDB(ctx context.Context, cfg *gconfig.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, sqlDB, err := dbutil.OpenWithRetry(ctx, dbutil.NewOpenFunc(cfg.Database), dbutil.DefaultRetryConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database failed: %w", err)
	}
	cleanup := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("database_close_failed", "err", closeErr)
		}
	}
	return db, cleanup, nil
}

func newGiftBotRepository(ctx context.Context, db *gorm.DB) (*grepo.Repository, error) {
	repo := grepo.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	return repo, nil
}

func newGiftBotTelegramClient(cfg *gconfig.Config, logger *slog.Logger) (*telegram.Client, error) {
	client, err := telegram.NewClient(cfg.Telegram, logger)
	if err != nil {
		return nil, fmt.Errorf("create telegram client failed: %w", err)
	}
	return client, nil
}

func newGiftBotReconciler(cfg *gconfig.Config, client *telegram.Client, repo *grepo.Repository, logger *slog.Logger) *ui.Reconciler {
	return ui.NewReconciler(client, repo, logger, cfg.Telegram.CallTimeout)
}

func newGiftBotEngine(repo *grepo.Repository, logger *slog.Logger) *game.Engine {
	return game.NewEngine(repo, logger)
}

func newGiftBotGate(
	cfg *gconfig.Config,
	repo *grepo.Repository,
	stores *giftBotStores,
	client *telegram.Client,
	logger *slog.Logger,
) *sponsor.Gate {
	return sponsor.NewGate(repo, stores.membership, client, logger, sponsor.Config{
		JoinRequestTTL: cfg.Sponsor.JoinRequestTTL,
		CheckTimeout:   cfg.Telegram.CallTimeout,
	})
}

func newGiftBotScheduler(cfg *gconfig.Config, repo *grepo.Repository, logger *slog.Logger) *reminder.Scheduler {
	return reminder.NewScheduler(repo, cfg.Admin.IsAdmin, logger)
}

func newGiftBotSweeper(
	cfg *gconfig.Config,
	scheduler *reminder.Scheduler,
	client *telegram.Client,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) *reminder.Sweeper {
	return reminder.NewSweeper(scheduler, gbot.NewReminderSender(client, msgProvider), logger, reminder.SweeperConfig{
		Interval:      cfg.Reminder.SweepInterval,
		Concurrency:   cfg.Reminder.Concurrency,
		RatePerSecond: cfg.Reminder.RatePerSecond,
		BatchLimit:    cfg.Reminder.BatchLimit,
	})
}

func newGiftBotBot(
	cfg *gconfig.Config,
	repo *grepo.Repository,
	reconciler *ui.Reconciler,
	engine *game.Engine,
	gate *sponsor.Gate,
	scheduler *reminder.Scheduler,
	client *telegram.Client,
	stores *giftBotStores,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) *gbot.Bot {
	return gbot.New(gbot.Deps{
		Repo:       repo,
		Reconciler: reconciler,
		Engine:     engine,
		Gate:       gate,
		Scheduler:  scheduler,
		Messenger:  client,
		Locker:     stores.locker,
		Messages:   msgProvider,
		Admin:      cfg.Admin,
		Game:       cfg.Game,
		Logger:     logger,
	})
}

func newGiftBotPoller(cfg *gconfig.Config, client *telegram.Client, handler *gbot.Bot, logger *slog.Logger) *telegram.Poller {
	return telegram.NewPoller(client, handler, logger, cfg.Telegram.PollTimeout, cfg.Telegram.Workers)
}

func newGiftBotHTTPMux(cfg *gconfig.Config, repo *grepo.Repository, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	ghttpapi.Register(mux, ghttpapi.AdminDeps{Repo: repo, APIKey: cfg.Admin.APIKey}, logger)
	return mux
}

func newGiftBotHTTPServer(cfg *gconfig.Config, mux *http.ServeMux) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return httpserver.NewServer(addr, otelhttp.NewHandler(mux, gconfig.ServiceName), httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
	})
}

func newGiftBotServerApp(
	cfg *gconfig.Config,
	logger *slog.Logger,
	tracing *telemetry.Provider,
	server *http.Server,
	poller *telegram.Poller,
	sweeper *reminder.Sweeper,
) *bootstrap.ServerApp {
	logger.Info("giftbot_components_ready",
		"tracing", tracing.IsEnabled(),
		"reminders", cfg.Reminder.Enabled,
		"workers", cfg.Telegram.Workers,
	)

	tasks := []bootstrap.BackgroundTask{
		{
			Name:        "telegram_poller",
			ErrorLogKey: "telegram_poller_failed",
			Run:         poller.Run,
		},
	}
	if cfg.Reminder.Enabled {
		tasks = append(tasks, bootstrap.BackgroundTask{
			Name:        "reminder_sweeper",
			ErrorLogKey: "reminder_sweeper_failed",
			Run:         sweeper.Run,
		})
	}

	return bootstrap.NewServerApp(gconfig.ServiceName, logger, server, 10*time.Second, tasks...)
}
