package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/metrics"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// Sender: 리마인더 메시지 발송자
type Sender interface {
	SendReminder(ctx context.Context, state model.ReminderState) error
}

// SweeperConfig: 스윕 주기와 발송 제한
type SweeperConfig struct {
	Interval      time.Duration
	Concurrency   int
	RatePerSecond float64
	BatchLimit    int
}

// Sweeper: 주기적으로 발송할 리마인더를 찾아 보낸다.
type Sweeper struct {
	scheduler   *Scheduler
	sender      Sender
	logger      *slog.Logger
	interval    time.Duration
	concurrency int
	batchLimit  int
	limiter     *rate.Limiter
	now         func() time.Time
}

// NewSweeper 는 Sweeper 를 생성한다.
func NewSweeper(scheduler *Scheduler, sender Sender, logger *slog.Logger, cfg SweeperConfig) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 20
	}
	return &Sweeper{
		scheduler:   scheduler,
		sender:      sender,
		logger:      logger,
		interval:    cfg.Interval,
		concurrency: cfg.Concurrency,
		batchLimit:  cfg.BatchLimit,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run: ctx 가 끝날 때까지 interval 마다 스윕한다.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("reminder_sweeper_started", "interval", s.interval, "concurrency", s.concurrency)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder_sweeper_stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("reminder_sweep_failed", "err", err)
			}
		}
	}
}

// SweepStats: 스윕 1회 결과
type SweepStats struct {
	Due     int
	Sent    int
	Revoked int
	Failed  int
}

// Sweep: 발송할 차례인 사용자마다 리마인더를 보낸다. 사용자 간 순서는 보장하지 않는다.
func (s *Sweeper) Sweep(ctx context.Context) (SweepStats, error) {
	started := time.Now()
	defer func() { metrics.ReminderSweepDuration.Observe(time.Since(started).Seconds()) }()

	now := s.now()
	due, err := s.scheduler.Due(ctx, now, s.batchLimit)
	if err != nil {
		return SweepStats{}, err
	}
	if len(due) == 0 {
		return SweepStats{}, nil
	}

	results := make([]string, len(due))
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for idx, state := range due {
		p.Go(func() {
			results[idx] = s.dispatch(ctx, state, now)
		})
	}
	p.Wait()

	stats := SweepStats{Due: len(due)}
	for _, result := range results {
		switch result {
		case "sent":
			stats.Sent++
		case "revoked":
			stats.Revoked++
		default:
			stats.Failed++
		}
	}
	s.logger.Info("reminder_sweep_done", "due", stats.Due, "sent", stats.Sent, "revoked", stats.Revoked, "failed", stats.Failed)
	return stats, nil
}

// dispatch: 결과 라벨 (sent, revoked, failed) 을 반환한다.
func (s *Sweeper) dispatch(ctx context.Context, state model.ReminderState, now time.Time) string {
	if err := s.limiter.Wait(ctx); err != nil {
		return "failed"
	}

	sendErr := s.sender.SendReminder(ctx, state)
	if domainerrors.IsPermissionRevoked(sendErr) {
		metrics.RemindersDispatched.WithLabelValues("revoked").Inc()
		if err := s.scheduler.Pause(ctx, state.UserID); err != nil {
			s.logger.Warn("reminder_pause_failed", "user_id", state.UserID, "err", err)
		}
		return "revoked"
	}

	result := "sent"
	if sendErr != nil {
		// 일시 장애여도 단계는 진행한다.
		result = "failed"
		s.logger.Warn("reminder_send_failed", "user_id", state.UserID, "stage", state.Stage, "err", sendErr)
	}
	metrics.RemindersDispatched.WithLabelValues(result).Inc()

	if _, err := s.scheduler.Advance(ctx, state, now); err != nil {
		s.logger.Warn("reminder_advance_failed", "user_id", state.UserID, "err", err)
	}
	return result
}
