package bot

import (
	"context"

	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/sponsor"
)

// handleMenuHome: 진행 중 게임의 미수령 당첨을 수령한 뒤 메뉴를 보여준다.
// 리마인더처럼 저장된 UI 메시지가 아닌 메시지에서 눌렸으면 그 메시지를 UI 로 가져온다.
func (b *Bot) handleMenuHome(ctx context.Context, req *request) error {
	collected, err := b.engine.AutoCollect(ctx, req.userID)
	if err != nil {
		return err
	}
	if collected > 0 {
		b.logger.Info("game_wins_auto_collected", "user_id", req.userID, "count", collected)
		if err := b.scheduler.Stop(ctx, req.userID); err != nil {
			b.logger.Warn("reminder_stop_failed", "user_id", req.userID, "err", err)
		}
	}

	text, err := b.menuScreenText(ctx, req.userID)
	if err != nil {
		return err
	}
	screen := screenFor(req, model.ScreenMenuHome, text, b.menuKeyboard())

	current, err := b.reconciler.IsCurrent(ctx, req.userID, req.chatID, req.messageID)
	if err != nil {
		return err
	}
	if current || req.messageID == 0 {
		_, err = b.reconciler.Display(ctx, screen)
		return err
	}
	_, err = b.reconciler.Adopt(ctx, screen, req.messageID)
	return err
}

// handleMenuHomeNew: 결제 안내 메시지의 메뉴 버튼. 항상 새 메시지로 UI 를 옮긴다.
func (b *Bot) handleMenuHomeNew(ctx context.Context, req *request) error {
	text, err := b.menuScreenText(ctx, req.userID)
	if err != nil {
		return err
	}
	_, err = b.reconciler.Recreate(ctx, screenFor(req, model.ScreenMenuHome, text, b.menuKeyboard()))
	return err
}

func (b *Bot) handleRefsStub(ctx context.Context, req *request) error {
	_, err := b.reconciler.Display(ctx, screenFor(req, model.ScreenRefsStub, b.text(messages.MenuRefsStub), b.menuOnlyKeyboard()))
	return err
}

func (b *Bot) handleTasks(ctx context.Context, req *request) error {
	sponsors, err := b.repo.ActiveTaskSponsors(ctx)
	if err != nil {
		return err
	}
	if len(sponsors) == 0 {
		_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenTasksNone, b.text(messages.TasksNone), b.menuOnlyKeyboard()))
		return err
	}
	keyboard := b.tasksKeyboard(sponsor.Visible(sponsors))
	_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenTasksList, b.text(messages.TasksList), keyboard))
	return err
}

// handleTasksCheck: 과제 채널이 모두 확인되면 아직 받지 않은 보너스를 지급한다.
func (b *Bot) handleTasksCheck(ctx context.Context, req *request) error {
	outcome, err := b.gate.GrantTaskBonuses(ctx, req.userID)
	if err != nil {
		return err
	}

	switch {
	case outcome.NoTasks:
		_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenTasksNone, b.text(messages.TasksInactive), b.menuOnlyKeyboard()))
	case !outcome.Result.AllOK:
		keyboard := b.tasksKeyboard(sponsor.Visible(outcome.Sponsors))
		_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenTasksList, b.text(messages.TasksNotSubscribed), keyboard))
	case outcome.Granted > 0:
		text := b.text(messages.TasksGranted, messageprovider.P("bonus", outcome.Granted))
		_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenTasksDone, text, b.menuOnlyKeyboard()))
	default:
		_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenTasksDone, b.text(messages.TasksAllDone), b.menuOnlyKeyboard()))
	}
	return err
}
