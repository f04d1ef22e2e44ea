// Package sponsor 는 스폰서 채널 구독 확인과 과제 보너스 지급을 담당한다.
package sponsor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/park285/gift-grid-bot/internal/giftbot/metrics"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/redis"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
)

// MembershipChecker: 채널 멤버십 조회 (getChatMember)
type MembershipChecker interface {
	ChatMemberStatus(ctx context.Context, channelID, userID int64) (string, error)
}

// IsSubscribedStatus: 구독으로 인정되는 멤버 상태인지 확인한다.
func IsSubscribedStatus(status string) bool {
	switch status {
	case "creator", "administrator", "member":
		return true
	default:
		return false
	}
}

// Result: 구독 확인 결과
type Result struct {
	AllOK   bool
	Missing []model.Sponsor
	Checked int
}

// Gate: 스폰서 구독 확인 게이트
type Gate struct {
	repo         *repository.Repository
	cache        *redis.MembershipCache
	checker      MembershipChecker
	logger       *slog.Logger
	joinTTL      time.Duration
	checkTimeout time.Duration
	now          func() time.Time
}

// Config: Gate 동작 설정
type Config struct {
	JoinRequestTTL time.Duration
	CheckTimeout   time.Duration
	Now            func() time.Time
}

// NewGate: cache 가 nil 이면 매번 멤버십을 조회한다.
func NewGate(repo *repository.Repository, cache *redis.MembershipCache, checker MembershipChecker, logger *slog.Logger, cfg Config) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.JoinRequestTTL <= 0 {
		cfg.JoinRequestTTL = 24 * time.Hour
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Gate{
		repo:         repo,
		cache:        cache,
		checker:      checker,
		logger:       logger,
		joinTTL:      cfg.JoinRequestTTL,
		checkTimeout: cfg.CheckTimeout,
		now:          cfg.Now,
	}
}

// Verify: 확인 가능한 채널 스폰서마다 구독 여부를 확인한다.
// bot/link 유형과 channel id 가 없는 스폰서는 확인 대상이 아니다.
func (g *Gate) Verify(ctx context.Context, userID int64, sponsors []model.Sponsor) (Result, error) {
	result := Result{Missing: []model.Sponsor{}}
	for _, sponsor := range sponsors {
		if !sponsor.Checkable() {
			continue
		}
		result.Checked++
		ok, err := g.subscribed(ctx, userID, sponsor.ChannelID)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			result.Missing = append(result.Missing, sponsor)
		}
	}
	result.AllOK = len(result.Missing) == 0
	return result, nil
}

// subscribed: 캐시 → getChatMember → 가입 요청 기록 순으로 확인한다.
func (g *Gate) subscribed(ctx context.Context, userID, channelID int64) (bool, error) {
	if status, ok, err := g.cache.Get(ctx, userID, channelID); err != nil {
		g.logger.Warn("membership_cache_get_failed", "user_id", userID, "channel_id", channelID, "err", err)
	} else if ok && IsSubscribedStatus(status) {
		metrics.SponsorChecks.WithLabelValues("cached").Inc()
		return true, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	status, err := g.checker.ChatMemberStatus(callCtx, channelID, userID)
	cancel()
	if err == nil && IsSubscribedStatus(status) {
		metrics.SponsorChecks.WithLabelValues("member").Inc()
		if putErr := g.cache.PutSubscribed(ctx, userID, channelID, status, g.now()); putErr != nil {
			g.logger.Warn("membership_cache_put_failed", "user_id", userID, "channel_id", channelID, "err", putErr)
		}
		return true, nil
	}
	if err != nil {
		metrics.SponsorChecks.WithLabelValues("error").Inc()
		g.logger.Debug("membership_check_failed", "user_id", userID, "channel_id", channelID, "err", err)
	}

	request, found, err := g.repo.GetJoinRequest(ctx, userID, channelID)
	if err != nil {
		return false, fmt.Errorf("load join request failed: %w", err)
	}
	if found && g.now().Sub(request.RequestedAt) < g.joinTTL {
		metrics.SponsorChecks.WithLabelValues("join_request").Inc()
		return true, nil
	}

	metrics.SponsorChecks.WithLabelValues("missing").Inc()
	return false, nil
}

// Visible: 표시할 스폰서 목록. 확인 가능한 채널이 하나도 없으면 bot/link 유형도 숨긴다.
func Visible(sponsors []model.Sponsor) []model.Sponsor {
	hasChannel := HasCheckable(sponsors)
	visible := make([]model.Sponsor, 0, len(sponsors))
	for _, sponsor := range sponsors {
		if !sponsor.Kind.IsVerifiable() && !hasChannel {
			continue
		}
		visible = append(visible, sponsor)
	}
	return visible
}

// HasCheckable: 구독 확인 대상 채널이 하나라도 있는지 여부
func HasCheckable(sponsors []model.Sponsor) bool {
	for _, sponsor := range sponsors {
		if sponsor.Checkable() {
			return true
		}
	}
	return false
}

// Onboarding: 온보딩 게이트 판정 결과
type Onboarding struct {
	// Required 가 false 이면 활성 스폰서가 없거나 확인 대상 채널이 없어 게이트를 건너뛴다.
	Required bool
	Result   Result
	Sponsors []model.Sponsor
}

// CheckOnboarding: 활성 온보딩 스폰서 전체에 대해 구독 여부를 확인한다.
func (g *Gate) CheckOnboarding(ctx context.Context, userID int64) (Onboarding, error) {
	sponsors, err := g.repo.ActiveStartSponsors(ctx)
	if err != nil {
		return Onboarding{}, err
	}
	if len(sponsors) == 0 || !HasCheckable(sponsors) {
		return Onboarding{Sponsors: sponsors, Result: Result{AllOK: true}}, nil
	}

	result, err := g.Verify(ctx, userID, sponsors)
	if err != nil {
		return Onboarding{}, err
	}
	return Onboarding{Required: true, Result: result, Sponsors: sponsors}, nil
}

// GrantOutcome: 과제 확인 결과
type GrantOutcome struct {
	// NoTasks: 활성 과제 스폰서가 없음
	NoTasks  bool
	Result   Result
	Sponsors []model.Sponsor
	Granted  int
}

// GrantTaskBonuses: 모든 과제 채널 구독이 확인되면 아직 지급하지 않은 스폰서마다 보너스를 지급한다.
// 재실행해도 같은 (사용자, 스폰서) 쌍에 두 번 지급하지 않는다.
func (g *Gate) GrantTaskBonuses(ctx context.Context, userID int64) (GrantOutcome, error) {
	sponsors, err := g.repo.ActiveTaskSponsors(ctx)
	if err != nil {
		return GrantOutcome{}, err
	}
	if len(sponsors) == 0 {
		return GrantOutcome{NoTasks: true}, nil
	}

	result, err := g.Verify(ctx, userID, sponsors)
	if err != nil {
		return GrantOutcome{}, err
	}
	outcome := GrantOutcome{Result: result, Sponsors: sponsors}
	if !result.AllOK {
		return outcome, nil
	}

	unrewarded, err := g.repo.UnrewardedTaskSponsors(ctx, userID)
	if err != nil {
		return GrantOutcome{}, err
	}
	granted, err := g.repo.GrantSponsorBonuses(ctx, userID, unrewarded, g.now())
	if err != nil {
		return GrantOutcome{}, fmt.Errorf("grant sponsor bonuses failed: %w", err)
	}
	outcome.Granted = granted

	if granted > 0 {
		metrics.SponsorBonusAttempts.Add(float64(granted))
		g.logger.Info("sponsor_bonus_granted", "user_id", userID, "sponsors", len(unrewarded), "attempts", granted)
	}
	return outcome, nil
}

// RecordJoinRequest: 활성 온보딩 채널에 대한 가입 요청만 기록한다. 기록했으면 true.
func (g *Gate) RecordJoinRequest(ctx context.Context, userID, channelID int64, at time.Time) (bool, error) {
	active, err := g.repo.IsActiveStartChannel(ctx, channelID)
	if err != nil {
		return false, err
	}
	if !active {
		return false, nil
	}
	if err := g.repo.UpsertJoinRequest(ctx, userID, channelID, at.UTC()); err != nil {
		return false, err
	}
	if err := g.cache.Invalidate(ctx, userID, channelID); err != nil {
		g.logger.Warn("membership_cache_invalidate_failed", "user_id", userID, "channel_id", channelID, "err", err)
	}
	g.logger.Info("join_request_recorded", "user_id", userID, "channel_id", channelID)
	return true, nil
}
