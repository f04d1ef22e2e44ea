package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	commonconfig "github.com/park285/gift-grid-bot/internal/common/config"
)

// NewLogger: 기본 slog 로거를 생성합니다. (stdout, tint 핸들러 사용)
func NewLogger() *slog.Logger {
	return slog.New(newTintHandler(os.Stdout, false))
}

func newTintHandler(w io.Writer, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    noColor,
	})
}

// EnableFileLoggingWithOTel: stdout 과 로테이션 파일(서비스별 + combined.log)에 동시에 기록하는 로거를 반환합니다.
// enableOTel 이면 trace_id/span_id 가 레코드에 추가됩니다.
func EnableFileLoggingWithOTel(cfg commonconfig.LogConfig, fileName string, enableOTel bool) (*slog.Logger, error) {
	logDir := strings.TrimSpace(cfg.Dir)
	if logDir == "" {
		return nil, nil
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	serviceFile := newRotatingFile(cfg, filepath.Join(logDir, fileName), 1)
	combinedFile := newRotatingFile(cfg, filepath.Join(logDir, "combined.log"), 3)

	handler := newTintHandler(io.MultiWriter(os.Stdout, serviceFile, combinedFile), true)
	if enableOTel {
		handler = NewOTelHandler(handler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("file_logging_enabled",
		slog.String("path", serviceFile.Filename),
		slog.String("combined", combinedFile.Filename),
		slog.Bool("otel_correlation", enableOTel),
	)
	return logger, nil
}

func newRotatingFile(cfg commonconfig.LogConfig, path string, sizeFactor int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB * sizeFactor,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
