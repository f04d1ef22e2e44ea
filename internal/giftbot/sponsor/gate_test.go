package sponsor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/gift-grid-bot/internal/common/testhelper"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/redis"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
)

var gateNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeChecker struct {
	statuses map[int64]string
	err      error
	calls    int
}

func (f *fakeChecker) ChatMemberStatus(_ context.Context, channelID, _ int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.statuses[channelID], nil
}

func newTestGate(t *testing.T, checker *fakeChecker, cache *redis.MembershipCache) (*Gate, *repository.Repository) {
	t.Helper()
	ctx := context.Background()
	repo := repository.New(testhelper.NewSQLiteDB(t))
	if err := repo.AutoMigrate(ctx); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if _, _, err := repo.UpsertUser(ctx, repository.UserProfile{ID: 1, FirstName: "Member"}); err != nil {
		t.Fatalf("upsert user failed: %v", err)
	}
	gate := NewGate(repo, cache, checker, nil, Config{
		JoinRequestTTL: 24 * time.Hour,
		CheckTimeout:   time.Second,
		Now:            func() time.Time { return gateNow },
	})
	return gate, repo
}

func channel(id int64) model.Sponsor {
	return model.Sponsor{ID: id, Title: "channel", Kind: model.SponsorKindChannel, ChannelID: -100 - id, Active: true}
}

func TestIsSubscribedStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"creator": true, "administrator": true, "member": true,
		"left": false, "kicked": false, "restricted": false, "": false,
	} {
		if got := IsSubscribedStatus(status); got != want {
			t.Errorf("IsSubscribedStatus(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestVerify_OnlyCheckableChannels(t *testing.T) {
	checker := &fakeChecker{statuses: map[int64]string{-101: "member", -102: "left"}}
	gate, _ := newTestGate(t, checker, nil)

	sponsors := []model.Sponsor{
		channel(1),
		channel(2),
		{ID: 3, Kind: model.SponsorKindBot, ChannelID: -103},
		{ID: 4, Kind: model.SponsorKindLink},
		{ID: 5, Kind: model.SponsorKindChannel, ChannelID: 0},
	}
	result, err := gate.Verify(context.Background(), 1, sponsors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AllOK || result.Checked != 2 || checker.calls != 2 {
		t.Fatalf("expected 2 checks with one missing, got %+v calls=%d", result, checker.calls)
	}
	if len(result.Missing) != 1 || result.Missing[0].ID != 2 {
		t.Errorf("expected sponsor 2 missing, got %+v", result.Missing)
	}
}

func TestVerify_JoinRequestBoundary(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "one second before expiry", age: 24*time.Hour - time.Second, want: true},
		{name: "exactly at expiry", age: 24 * time.Hour, want: false},
		{name: "one second after expiry", age: 24*time.Hour + time.Second, want: false},
		{name: "fresh", age: time.Minute, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &fakeChecker{err: errors.New("Bad Request: member list is inaccessible")}
			gate, repo := newTestGate(t, checker, nil)
			ctx := context.Background()
			sponsor := channel(1)
			if err := repo.UpsertJoinRequest(ctx, 1, sponsor.ChannelID, gateNow.Add(-tt.age)); err != nil {
				t.Fatalf("upsert join request failed: %v", err)
			}

			result, err := gate.Verify(ctx, 1, []model.Sponsor{sponsor})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.AllOK != tt.want {
				t.Errorf("age %v: AllOK = %v, want %v", tt.age, result.AllOK, tt.want)
			}
		})
	}
}

func TestVerify_UsesMembershipCache(t *testing.T) {
	client, _ := testhelper.NewMiniredisClient(t)
	cache := redis.NewMembershipCache(client, nil, time.Minute)
	checker := &fakeChecker{statuses: map[int64]string{-101: "member"}}
	gate, _ := newTestGate(t, checker, cache)
	ctx := context.Background()

	for range 3 {
		result, err := gate.Verify(ctx, 1, []model.Sponsor{channel(1)})
		if err != nil || !result.AllOK {
			t.Fatalf("expected subscribed, result=%+v err=%v", result, err)
		}
	}
	if checker.calls != 1 {
		t.Errorf("expected one membership lookup, got %d", checker.calls)
	}

	checker.statuses[-101] = "left"
	if err := cache.Invalidate(ctx, 1, -101); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	result, _ := gate.Verify(ctx, 1, []model.Sponsor{channel(1)})
	if result.AllOK {
		t.Error("negative results must not come from cache")
	}
}

func TestVisible(t *testing.T) {
	bot := model.Sponsor{ID: 2, Kind: model.SponsorKindBot}
	link := model.Sponsor{ID: 3, Kind: model.SponsorKindLink}

	if got := Visible([]model.Sponsor{bot, link}); len(got) != 0 {
		t.Errorf("bot/link must be hidden without a checkable channel, got %d", len(got))
	}
	if got := Visible([]model.Sponsor{channel(1), bot, link}); len(got) != 3 {
		t.Errorf("all sponsors visible with a checkable channel, got %d", len(got))
	}
	unverifiable := model.Sponsor{ID: 4, Kind: model.SponsorKindChannel}
	if got := Visible([]model.Sponsor{unverifiable, bot}); len(got) != 1 || got[0].ID != 4 {
		t.Errorf("channel without id stays visible alone, got %+v", got)
	}
}

func TestCheckOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("skipped without sponsors", func(t *testing.T) {
		gate, _ := newTestGate(t, &fakeChecker{}, nil)
		onboarding, err := gate.CheckOnboarding(ctx, 1)
		if err != nil || onboarding.Required || !onboarding.Result.AllOK {
			t.Fatalf("expected gate skipped, got %+v err=%v", onboarding, err)
		}
	})

	t.Run("skipped without checkable channel", func(t *testing.T) {
		gate, repo := newTestGate(t, &fakeChecker{}, nil)
		_, _ = repo.CreateSponsor(ctx, repository.CatalogStart, model.Sponsor{Title: "bot", Kind: model.SponsorKindBot, Active: true})
		onboarding, err := gate.CheckOnboarding(ctx, 1)
		if err != nil || onboarding.Required {
			t.Fatalf("expected gate skipped, got %+v err=%v", onboarding, err)
		}
	})

	t.Run("required and missing", func(t *testing.T) {
		gate, repo := newTestGate(t, &fakeChecker{statuses: map[int64]string{}}, nil)
		_, _ = repo.CreateSponsor(ctx, repository.CatalogStart, model.Sponsor{Title: "news", ChannelID: -500, Active: true})
		onboarding, err := gate.CheckOnboarding(ctx, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !onboarding.Required || onboarding.Result.AllOK || len(onboarding.Result.Missing) != 1 {
			t.Errorf("expected one missing sponsor, got %+v", onboarding)
		}
	})
}

func TestGrantTaskBonuses(t *testing.T) {
	ctx := context.Background()

	t.Run("no tasks", func(t *testing.T) {
		gate, _ := newTestGate(t, &fakeChecker{}, nil)
		outcome, err := gate.GrantTaskBonuses(ctx, 1)
		if err != nil || !outcome.NoTasks {
			t.Fatalf("expected NoTasks, got %+v err=%v", outcome, err)
		}
	})

	t.Run("missing subscription grants nothing", func(t *testing.T) {
		gate, repo := newTestGate(t, &fakeChecker{statuses: map[int64]string{-600: "left"}}, nil)
		_, _ = repo.CreateSponsor(ctx, repository.CatalogTask, model.Sponsor{Title: "A", ChannelID: -600, BonusAttempts: 2, Active: true})

		outcome, err := gate.GrantTaskBonuses(ctx, 1)
		if err != nil || outcome.Result.AllOK || outcome.Granted != 0 {
			t.Fatalf("expected no grant, got %+v err=%v", outcome, err)
		}
		if attempts, _ := repo.GetAttempts(ctx, 1); attempts != 0 {
			t.Errorf("attempts must stay 0, got %d", attempts)
		}
	})

	t.Run("granted exactly once", func(t *testing.T) {
		checker := &fakeChecker{statuses: map[int64]string{-600: "member", -601: "administrator"}}
		gate, repo := newTestGate(t, checker, nil)
		_, _ = repo.CreateSponsor(ctx, repository.CatalogTask, model.Sponsor{Title: "A", ChannelID: -600, BonusAttempts: 2, Active: true})
		_, _ = repo.CreateSponsor(ctx, repository.CatalogTask, model.Sponsor{Title: "B", ChannelID: -601, BonusAttempts: 1, Active: true})
		_, _ = repo.CreateSponsor(ctx, repository.CatalogTask, model.Sponsor{Title: "Site", Kind: model.SponsorKindLink, InviteLink: "https://example.org", BonusAttempts: 1, Active: true})

		first, err := gate.GrantTaskBonuses(ctx, 1)
		if err != nil || first.Granted != 4 {
			t.Fatalf("expected 4 attempts granted, got %+v err=%v", first, err)
		}
		second, err := gate.GrantTaskBonuses(ctx, 1)
		if err != nil || second.Granted != 0 || !second.Result.AllOK {
			t.Fatalf("re-run must not re-credit, got %+v err=%v", second, err)
		}
		if attempts, _ := repo.GetAttempts(ctx, 1); attempts != 4 {
			t.Errorf("expected 4 attempts total, got %d", attempts)
		}
	})
}

func TestRecordJoinRequest(t *testing.T) {
	ctx := context.Background()
	gate, repo := newTestGate(t, &fakeChecker{}, nil)
	_, _ = repo.CreateSponsor(ctx, repository.CatalogStart, model.Sponsor{Title: "news", ChannelID: -700, Active: true})
	_, _ = repo.CreateSponsor(ctx, repository.CatalogStart, model.Sponsor{Title: "old", ChannelID: -701, Active: false})

	recorded, err := gate.RecordJoinRequest(ctx, 1, -700, gateNow)
	if err != nil || !recorded {
		t.Fatalf("expected recorded, got %v err=%v", recorded, err)
	}
	recorded, err = gate.RecordJoinRequest(ctx, 1, -701, gateNow)
	if err != nil || recorded {
		t.Fatalf("inactive channel must be ignored, got %v err=%v", recorded, err)
	}
	recorded, _ = gate.RecordJoinRequest(ctx, 1, -999, gateNow)
	if recorded {
		t.Error("unknown channel must be ignored")
	}

	if _, found, _ := repo.GetJoinRequest(ctx, 1, -701); found {
		t.Error("no record expected for inactive channel")
	}
	request, found, _ := repo.GetJoinRequest(ctx, 1, -700)
	if !found || !request.RequestedAt.Equal(gateNow) {
		t.Errorf("unexpected join request: %+v found=%v", request, found)
	}
}
