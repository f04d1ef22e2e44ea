package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/park285/gift-grid-bot/internal/common/httpserver"
)

// BackgroundTask: HTTP 서버와 함께 실행되는 장기 실행 작업 (업데이트 폴러, 리마인더 스윕 등)
type BackgroundTask struct {
	Name        string
	ErrorLogKey string
	Run         func(ctx context.Context) error
}

// RunHTTPServer: SIGINT/SIGTERM 을 받을 때까지 HTTP 서버와 백그라운드 작업을 함께 실행한다.
// 어느 하나라도 에러로 끝나면 나머지도 취소된다.
func RunHTTPServer(
	ctx context.Context,
	logger *slog.Logger,
	bot string,
	server *http.Server,
	shutdownTimeout time.Duration,
	backgroundTasks ...BackgroundTask,
) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)

	for _, task := range backgroundTasks {
		if task.Run == nil {
			continue
		}
		g.Go(func() error {
			if err := task.Run(gctx); err != nil {
				logKey := task.ErrorLogKey
				if logKey == "" {
					logKey = "background_task_failed"
				}
				logger.Error(logKey, "task", task.Name, "err", err)
				return fmt.Errorf("%s failed: %w", task.Name, err)
			}
			return nil
		})
	}

	logger.Info("server_start", "bot", bot, "addr", server.Addr)
	g.Go(func() error {
		if err := httpserver.Serve(gctx, server, shutdownTimeout); err != nil {
			return fmt.Errorf("http server serve failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run http server failed: %w", err)
	}
	return nil
}
