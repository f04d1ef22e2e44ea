package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/metrics"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
)

// Engine: 게임 세션 상태 전이 (start, reveal, collect)
type Engine struct {
	repo   *repository.Repository
	logger *slog.Logger
	random RandomFunc
	now    func() time.Time
}

// Option: Engine 설정 함수
type Option func(*Engine)

// WithRandom: 보드 생성 난수 공급자를 교체한다.
func WithRandom(random RandomFunc) Option {
	return func(e *Engine) {
		if random != nil {
			e.random = random
		}
	}
}

// WithClock: 시각 공급자를 교체한다.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine 는 Engine 을 생성한다.
func NewEngine(repo *repository.Repository, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		repo:   repo,
		logger: logger,
		random: defaultRandom,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RevealResult: 칸 하나를 연 결과
type RevealResult struct {
	Session *model.GameSession
	// Opened 가 false 이면 이미 열린 칸이라 아무 변화가 없었다.
	Opened   bool
	Hit      *model.CellGift
	Burned   int
	Attempts int
}

// CollectResult: 당첨 수령 결과
type CollectResult struct {
	Session   *model.GameSession
	Collected []model.PendingWin
}

// Start: 진행 중 세션이 있으면 이어서 반환하고, 없으면 새 보드를 만든다.
// 시도 횟수가 1 미만이면 NeedAttemptsError 를 반환하고 아무것도 바꾸지 않는다.
func (e *Engine) Start(ctx context.Context, userID int64, settings model.Settings) (*model.GameSession, error) {
	var session *model.GameSession
	err := e.repo.Transaction(ctx, func(tx *repository.Repository) error {
		attempts, err := tx.GetAttempts(ctx, userID)
		if err != nil {
			return err
		}
		if attempts < 1 {
			return domainerrors.NeedAttemptsError{UserID: userID, Attempts: attempts}
		}

		existing, err := tx.GetSession(ctx, userID)
		if err != nil {
			return err
		}
		if existing.IsActive() {
			session = existing
			return nil
		}

		gifts, err := tx.ActiveGifts(ctx)
		if err != nil {
			return err
		}
		board, err := BuildBoard(gifts, settings.ClampedRevealProbability(), e.random)
		if err != nil {
			if !errors.Is(err, domainerrors.ErrNoGiftsConfigured) {
				return err
			}
			e.logger.Warn("game_board_without_gifts", "user_id", userID, "err", err)
		}

		now := e.now()
		session = &model.GameSession{
			UserID:        userID,
			SchemaVersion: model.SessionSchemaVersion,
			Board:         board,
			PendingWins:   []model.PendingWin{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.SaveSession(ctx, session); err != nil {
			return err
		}

		metrics.GameEvents.WithLabelValues("start").Inc()
		e.logger.Info("game_session_started",
			"user_id", userID,
			"hidden_gifts", session.HiddenGiftCount(),
			"reveal_probability", settings.ClampedRevealProbability(),
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start game failed: %w", err)
	}
	return session, nil
}

// Reveal: 칸 하나를 열고 시도 1회를 차감한다. 차감과 세션 저장은 한 트랜잭션이다.
// 남은 시도가 0 이 되면 모든 경품 칸을 공개하고 미수령 당첨을 소멸시킨 뒤 세션을 끝낸다.
func (e *Engine) Reveal(ctx context.Context, userID int64, cell int) (RevealResult, error) {
	if cell < 0 || cell >= model.CellCount {
		return RevealResult{}, domainerrors.InvalidCellError{Index: cell}
	}

	var result RevealResult
	err := e.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := tx.GetSession(ctx, userID)
		if err != nil {
			return err
		}
		if session == nil {
			return domainerrors.SessionNotFoundError{UserID: userID}
		}
		if session.Finished {
			return domainerrors.SessionFinishedError{UserID: userID}
		}

		result.Session = session
		if session.Board.Opened[cell] {
			result.Attempts, err = tx.GetAttempts(ctx, userID)
			return err
		}

		debited, remaining, err := tx.DebitAttempt(ctx, userID)
		if err != nil {
			return err
		}
		if !debited {
			return domainerrors.NeedAttemptsError{UserID: userID, Attempts: remaining}
		}

		session.Board.Opened[cell] = true
		if gift := session.Board.Gifts[cell]; gift != nil {
			session.PendingWins = append(session.PendingWins, model.PendingWin{GiftID: gift.GiftID, Title: gift.Title})
			result.Hit = gift
		}
		if remaining == 0 {
			session.RevealAllGifts()
			result.Burned = len(session.PendingWins)
			session.PendingWins = []model.PendingWin{}
			session.Finished = true
		}
		session.UpdatedAt = e.now()

		result.Opened = true
		result.Attempts = remaining
		return tx.SaveSession(ctx, session)
	})
	if err != nil {
		return RevealResult{}, err
	}

	if result.Opened {
		metrics.GameEvents.WithLabelValues("reveal").Inc()
		if result.Hit != nil {
			metrics.GameEvents.WithLabelValues("hit").Inc()
		}
		if result.Session.Finished {
			metrics.GameEvents.WithLabelValues("burn").Inc()
			e.logger.Info("game_session_burned", "user_id", userID, "burned_wins", result.Burned)
		}
		e.logger.Debug("reveal_committed", "user_id", userID, "cell", cell, "hit", result.Hit != nil, "attempts", result.Attempts)
	}
	return result, nil
}

// Collect: 미수령 당첨마다 won 인벤토리 항목을 만들고 세션을 끝낸다.
func (e *Engine) Collect(ctx context.Context, userID int64) (CollectResult, error) {
	var result CollectResult
	err := e.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session, err := tx.GetSession(ctx, userID)
		if err != nil {
			return err
		}
		if session == nil {
			return domainerrors.SessionNotFoundError{UserID: userID}
		}
		if session.Finished {
			return domainerrors.SessionFinishedError{UserID: userID}
		}
		if len(session.PendingWins) == 0 {
			return domainerrors.NoPendingWinsError{UserID: userID}
		}

		now := e.now()
		if err := tx.AddInventoryItems(ctx, userID, session.PendingWins, now); err != nil {
			return err
		}
		result.Collected = session.PendingWins
		session.PendingWins = []model.PendingWin{}
		session.Finished = true
		session.UpdatedAt = now
		result.Session = session
		return tx.SaveSession(ctx, session)
	})
	if err != nil {
		return CollectResult{}, err
	}

	metrics.GameEvents.WithLabelValues("collect").Inc()
	e.logger.Info("game_wins_collected", "user_id", userID, "count", len(result.Collected))
	return result, nil
}

// AutoCollect: 진행 중 세션에 미수령 당첨이 있으면 수령한다. 수령한 개수를 반환한다.
func (e *Engine) AutoCollect(ctx context.Context, userID int64) (int, error) {
	session, err := e.Snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !session.IsActive() || len(session.PendingWins) == 0 {
		return 0, nil
	}

	result, err := e.Collect(ctx, userID)
	if err != nil {
		// 동시에 다른 요청이 먼저 수령/소멸시킨 경우
		if domainerrors.IsExpectedUserBehavior(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(result.Collected), nil
}

// Snapshot: 렌더링용 현재 세션. 없으면 nil.
func (e *Engine) Snapshot(ctx context.Context, userID int64) (*model.GameSession, error) {
	session, err := e.repo.GetSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load game session failed: %w", err)
	}
	return session, nil
}
