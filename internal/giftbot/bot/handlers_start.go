package bot

import (
	"context"
	"html"

	"github.com/park285/gift-grid-bot/internal/common/messageprovider"
	"github.com/park285/gift-grid-bot/internal/giftbot/messages"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/sponsor"
)

// handleStart: 첫 /start 메시지를 고정하고 새 메시지로 인사(신규) 또는 메뉴(기존)를 보낸다.
func (b *Bot) handleStart(ctx context.Context, req *request) error {
	if req.user.StartMessageID == nil {
		pinned, err := b.repo.SetStartMessageID(ctx, req.userID, req.messageID)
		if err != nil {
			return err
		}
		if pinned {
			b.logger.Debug("start_message_pinned", "user_id", req.userID, "message_id", req.messageID)
		}
	}

	if req.created {
		name := html.EscapeString(req.user.DisplayName(b.text(messages.CommonDefaultName)))
		text := b.text(messages.StartHelloNew, messageprovider.P("name", name))
		_, err := b.reconciler.Recreate(ctx, screenFor(req, model.ScreenStartHelloNew, text, b.startKeyboard()))
		if err == nil {
			b.logger.Info("user_registered", "user_id", req.userID)
		}
		return err
	}

	text, err := b.menuScreenText(ctx, req.userID)
	if err != nil {
		return err
	}
	_, err = b.reconciler.Recreate(ctx, screenFor(req, model.ScreenMenuHome, text, b.menuKeyboard()))
	return err
}

func (b *Bot) handleStartBack(ctx context.Context, req *request) error {
	_, err := b.reconciler.Display(ctx, screenFor(req, model.ScreenStartHello, b.text(messages.StartHello), b.startKeyboard()))
	return err
}

func (b *Bot) handleChooseGift(ctx context.Context, req *request) error {
	return b.onboard(ctx, req, messages.StartSubs)
}

func (b *Bot) handleCheckSubs(ctx context.Context, req *request) error {
	return b.onboard(ctx, req, messages.StartNotSubscribed)
}

// onboard: 온보딩 채널을 확인하고 통과하면 최초 1회 보너스를 지급한 뒤 메뉴를 보여준다.
// 통과하지 못하면 failKey 문구와 스폰서 목록을 보여준다.
func (b *Bot) onboard(ctx context.Context, req *request, failKey string) error {
	check, err := b.gate.CheckOnboarding(ctx, req.userID)
	if err != nil {
		return err
	}
	if check.Required && !check.Result.AllOK {
		return b.showOnboarding(ctx, req, check.Sponsors, failKey)
	}

	claimed, _, err := b.repo.ClaimOnboardingReward(ctx, req.userID, b.game.OnboardingBonusAttempts, b.now())
	if err != nil {
		return err
	}
	text, err := b.menuScreenText(ctx, req.userID)
	if err != nil {
		return err
	}
	if claimed {
		b.logger.Info("onboarding_reward_claimed", "user_id", req.userID, "attempts", b.game.OnboardingBonusAttempts)
		text = b.text(messages.StartRewardPrefix) + "\n\n" + text
	}
	_, err = b.reconciler.Display(ctx, screenFor(req, model.ScreenMenuHome, text, b.menuKeyboard()))
	return err
}

func (b *Bot) showOnboarding(ctx context.Context, req *request, sponsors []model.Sponsor, textKey string) error {
	keyboard := b.onboardingKeyboard(sponsor.Visible(sponsors))
	_, err := b.reconciler.Display(ctx, screenFor(req, model.ScreenStartSubs, b.text(textKey), keyboard))
	return err
}

// enforceOnboarding: 온보딩 채널 구독이 확인되지 않았으면 구독 화면을 띄우고 false 를 반환한다.
func (b *Bot) enforceOnboarding(ctx context.Context, req *request) (bool, error) {
	check, err := b.gate.CheckOnboarding(ctx, req.userID)
	if err != nil {
		return false, err
	}
	if !check.Required || check.Result.AllOK {
		return true, nil
	}
	b.logger.Debug("onboarding_gate_blocked", "user_id", req.userID, "missing", len(check.Result.Missing))
	return false, b.showOnboarding(ctx, req, check.Sponsors, messages.StartSubs)
}

func (b *Bot) menuScreenText(ctx context.Context, userID int64) (string, error) {
	settings, err := b.settings(ctx)
	if err != nil {
		return "", err
	}
	attempts, err := b.repo.GetAttempts(ctx, userID)
	if err != nil {
		return "", err
	}
	return b.menuText(attempts, settings), nil
}
