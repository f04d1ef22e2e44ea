package bot

import (
	"context"
	"errors"
	"html"

	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// handlePlay: 진행 중 보드를 이어서 보여주거나 새 보드를 만든다.
func (b *Bot) handlePlay(ctx context.Context, req *request) error {
	settings, err := b.settings(ctx)
	if err != nil {
		return err
	}
	session, err := b.engine.Start(ctx, req.userID, settings)
	if errors.As(err, new(domainerrors.NeedAttemptsError)) {
		return b.showNoAttempts(ctx, req)
	}
	if err != nil {
		return err
	}

	attempts, err := b.repo.GetAttempts(ctx, req.userID)
	if err != nil {
		return err
	}
	return b.showBoard(ctx, req, b.boardText(attempts, session), session)
}

// handleCell: 칸 하나를 연다. 시도 차감과 세션 저장이 커밋된 뒤에 화면을 갱신한다.
func (b *Bot) handleCell(ctx context.Context, req *request) error {
	cell, err := parseID(req.data, cbGameCellPrefix)
	if err != nil {
		return err
	}

	result, err := b.engine.Reveal(ctx, req.userID, int(cell))
	switch {
	case err == nil:
	case errors.As(err, new(domainerrors.NeedAttemptsError)):
		return b.showNoAttempts(ctx, req)
	case errors.As(err, new(domainerrors.SessionFinishedError)), errors.As(err, new(domainerrors.SessionNotFoundError)):
		b.answer(ctx, req, b.text(messages.GameFinished), true)
		return err
	default:
		return err
	}
	if !result.Opened {
		return nil
	}

	text := b.boardText(result.Attempts, result.Session)
	if result.Hit != nil {
		text = b.text(messages.GameWin, messageprovider.P("title", html.EscapeString(result.Hit.Title))) + "\n\n" + text
	}
	if result.Burned > 0 {
		text += "\n\n" + b.text(messages.GameBurned)
	}
	return b.showBoard(ctx, req, text, result.Session)
}

// handleTake: 미수령 당첨을 인벤토리로 옮기고 리마인더를 끝낸다.
func (b *Bot) handleTake(ctx context.Context, req *request) error {
	result, err := b.engine.Collect(ctx, req.userID)
	switch {
	case err == nil:
	case errors.As(err, new(domainerrors.NoPendingWinsError)):
		b.answer(ctx, req, b.text(messages.GameNothingToTake), false)
		return err
	case errors.As(err, new(domainerrors.SessionFinishedError)), errors.As(err, new(domainerrors.SessionNotFoundError)):
		b.answer(ctx, req, b.text(messages.GameFinished), true)
		return err
	default:
		return err
	}

	if err := b.scheduler.Stop(ctx, req.userID); err != nil {
		b.logger.Warn("reminder_stop_failed", "user_id", req.userID, "err", err)
	}

	attempts, err := b.repo.GetAttempts(ctx, req.userID)
	if err != nil {
		return err
	}
	text := b.text(messages.GameCollected) + "\n\n" + b.boardText(attempts, result.Session)
	return b.showBoard(ctx, req, text, result.Session)
}

func (b *Bot) handleNoop(_ context.Context, _ *request) error {
	return nil
}

func (b *Bot) showBoard(ctx context.Context, req *request, text string, session *model.GameSession) error {
	_, err := b.reconciler.Display(ctx, screenFor(req, model.ScreenGamePlay, text, b.boardKeyboard(session)))
	return err
}

func (b *Bot) showNoAttempts(ctx context.Context, req *request) error {
	_, err := b.reconciler.Display(ctx, screenFor(req, model.ScreenGameNoAttempts, b.text(messages.GameNoAttempts), b.menuOnlyKeyboard()))
	return err
}
