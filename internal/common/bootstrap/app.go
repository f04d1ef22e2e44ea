package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ServerApp: HTTP 서버와 백그라운드 작업 묶음.
type ServerApp struct {
	Bot             string
	Logger          *slog.Logger
	Server          *http.Server
	ShutdownTimeout time.Duration
	BackgroundTasks []BackgroundTask
}

func NewServerApp(
	bot string,
	logger *slog.Logger,
	server *http.Server,
	shutdownTimeout time.Duration,
	backgroundTasks ...BackgroundTask,
) *ServerApp {
	return &ServerApp{
		Bot:             bot,
		Logger:          logger,
		Server:          server,
		ShutdownTimeout: shutdownTimeout,
		BackgroundTasks: backgroundTasks,
	}
}

// Run 는 종료 시그널까지 블록한다.
func (a *ServerApp) Run(ctx context.Context) error {
	if a == nil {
		return nil
	}
	return RunHTTPServer(ctx, a.Logger, a.Bot, a.Server, a.ShutdownTimeout, a.BackgroundTasks...)
}
