package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/gift-grid-bot/internal/common/testhelper"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo := New(testhelper.NewSQLiteDB(t))
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repo
}

func mustUser(t *testing.T, repo *Repository, userID int64, attempts int) {
	t.Helper()
	ctx := context.Background()
	if _, _, err := repo.UpsertUser(ctx, UserProfile{ID: userID, FirstName: "Test"}); err != nil {
		t.Fatalf("upsert user failed: %v", err)
	}
	if attempts > 0 {
		if _, err := repo.AddAttempts(ctx, userID, attempts); err != nil {
			t.Fatalf("add attempts failed: %v", err)
		}
	}
}

func TestRepository_NilDB(t *testing.T) {
	var repo *Repository
	if err := repo.AutoMigrate(context.Background()); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestUpsertUser_CreatedOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, created, err := repo.UpsertUser(ctx, UserProfile{ID: 7, Username: "first"})
	if err != nil || !created {
		t.Fatalf("expected created, got created=%v err=%v", created, err)
	}
	user, created, err := repo.UpsertUser(ctx, UserProfile{ID: 7, Username: "second"})
	if err != nil || created {
		t.Fatalf("expected update, got created=%v err=%v", created, err)
	}
	if user.Username != "second" {
		t.Errorf("expected username updated, got %s", user.Username)
	}
}

func TestAddAttempts_NeverNegative(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 2)

	attempts, err := repo.AddAttempts(ctx, 1, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 0 {
		t.Errorf("expected floor at 0, got %d", attempts)
	}
}

func TestAdminUserUpdates_UnknownUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var notFound domainerrors.NotFoundError
	if _, err := repo.AddAttempts(ctx, 404, 1); !errors.As(err, &notFound) {
		t.Errorf("AddAttempts: expected NotFoundError, got %v", err)
	}
	if err := repo.SetBanned(ctx, 404, true); !errors.As(err, &notFound) {
		t.Errorf("SetBanned: expected NotFoundError, got %v", err)
	}
}

func TestDebitAttempt(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 1)

	ok, remaining, err := repo.DebitAttempt(ctx, 1)
	if err != nil || !ok || remaining != 0 {
		t.Fatalf("first debit: ok=%v remaining=%d err=%v", ok, remaining, err)
	}
	ok, remaining, err = repo.DebitAttempt(ctx, 1)
	if err != nil || ok || remaining != 0 {
		t.Fatalf("second debit should be refused: ok=%v remaining=%d err=%v", ok, remaining, err)
	}
}

func TestSetStartMessageID_Once(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 0)

	if set, err := repo.SetStartMessageID(ctx, 1, 10); err != nil || !set {
		t.Fatalf("first set: set=%v err=%v", set, err)
	}
	if set, err := repo.SetStartMessageID(ctx, 1, 20); err != nil || set {
		t.Fatalf("second set should be ignored: set=%v err=%v", set, err)
	}
	user, _, _ := repo.GetUser(ctx, 1)
	if user.StartMessageID == nil || *user.StartMessageID != 10 {
		t.Errorf("expected start message 10, got %v", user.StartMessageID)
	}
}

func TestClaimOnboardingReward_Once(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 0)
	now := time.Now().UTC()

	claimed, attempts, err := repo.ClaimOnboardingReward(ctx, 1, 3, now)
	if err != nil || !claimed || attempts != 3 {
		t.Fatalf("first claim: claimed=%v attempts=%d err=%v", claimed, attempts, err)
	}
	claimed, attempts, err = repo.ClaimOnboardingReward(ctx, 1, 3, now)
	if err != nil || claimed || attempts != 3 {
		t.Fatalf("second claim: claimed=%v attempts=%d err=%v", claimed, attempts, err)
	}
}

func TestUIState_SingleRowPerUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.SaveUIState(ctx, model.UIState{UserID: 1, ChatID: 1, MessageID: 100, Screen: model.ScreenMenuHome}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.SaveUIState(ctx, model.UIState{UserID: 1, ChatID: 1, MessageID: 101, Screen: model.ScreenGamePlay, Payload: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	state, found, err := repo.GetUIState(ctx, 1)
	if err != nil || !found {
		t.Fatalf("get failed: found=%v err=%v", found, err)
	}
	if state.MessageID != 101 || state.Screen != model.ScreenGamePlay || string(state.Payload) != `{"a":1}` {
		t.Errorf("unexpected state: %+v", state)
	}

	var count int64
	repo.db.Model(&UIState{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one row, got %d", count)
	}
}

func TestGrantSponsorBonuses_Idempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 0)
	now := time.Now().UTC()

	id, err := repo.CreateSponsor(ctx, CatalogTask, model.Sponsor{Title: "A", Kind: model.SponsorKindChannel, ChannelID: -1, BonusAttempts: 2, Active: true})
	if err != nil {
		t.Fatalf("create sponsor failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		unrewarded, err := repo.UnrewardedTaskSponsors(ctx, 1)
		if err != nil {
			t.Fatalf("unrewarded failed: %v", err)
		}
		if _, err := repo.GrantSponsorBonuses(ctx, 1, unrewarded, now); err != nil {
			t.Fatalf("grant failed: %v", err)
		}
	}
	// 이미 지급된 스폰서를 직접 다시 넘겨도 중복 지급되지 않는다.
	total, err := repo.GrantSponsorBonuses(ctx, 1, []model.Sponsor{{ID: id, BonusAttempts: 2}}, now)
	if err != nil || total != 0 {
		t.Fatalf("expected no credit on replay, total=%d err=%v", total, err)
	}

	attempts, _ := repo.GetAttempts(ctx, 1)
	if attempts != 2 {
		t.Errorf("expected bonus credited once (2), got %d", attempts)
	}

	revoked, err := repo.RevokeGrant(ctx, 1, id, now)
	if err != nil || !revoked {
		t.Fatalf("revoke failed: revoked=%v err=%v", revoked, err)
	}
	attempts, _ = repo.GetAttempts(ctx, 1)
	if attempts != 2 {
		t.Errorf("revoke must not claw back attempts, got %d", attempts)
	}
}

func TestSession_RoundTripAndSchemaVersion(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	gifts := make([]*model.CellGift, model.CellCount)
	gifts[5] = &model.CellGift{GiftID: 9, Title: "Rose", Emoji: "🌹"}
	session := &model.GameSession{
		UserID:      1,
		Board:       model.NewBoard(gifts),
		PendingWins: []model.PendingWin{{GiftID: 9, Title: "Rose"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	session.Board.Opened[5] = true
	if err := repo.SaveSession(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := repo.GetSession(ctx, 1)
	if err != nil || loaded == nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded.Board.Opened[5] || loaded.Board.Gifts[5] == nil || loaded.Board.Gifts[5].Title != "Rose" {
		t.Errorf("board not restored: %+v", loaded.Board.Gifts[5])
	}
	if len(loaded.PendingWins) != 1 || loaded.Finished {
		t.Errorf("unexpected session state: %+v", loaded)
	}

	repo.db.Model(&GameSession{}).Where("user_id = ?", 1).Update("schema_version", 99)
	loaded, err = repo.GetSession(ctx, 1)
	if err != nil || loaded != nil {
		t.Errorf("unknown schema version should load as no session, got %+v err=%v", loaded, err)
	}
}

func TestInventory_ForwardOnlyTransitions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	mustUser(t, repo, 1, 0)

	giftID, _ := repo.CreateGift(ctx, model.Gift{Title: "Bear", Emoji: "🧸", Price: 15, DropChance: 1, Active: true})
	if err := repo.AddInventoryItems(ctx, 1, []model.PendingWin{{GiftID: giftID, Title: "Bear"}}, now); err != nil {
		t.Fatalf("add items failed: %v", err)
	}
	items, err := repo.ListInventory(ctx, 1)
	if err != nil || len(items) != 1 {
		t.Fatalf("list failed: items=%d err=%v", len(items), err)
	}
	item := items[0]
	if item.Status != model.InventoryStatusWon || item.GiftTitle != "Bear" || item.Price != 15 {
		t.Fatalf("unexpected item: %+v", item)
	}

	if err := repo.TransitionInventoryStatus(ctx, item.ID, 1, model.InventoryStatusWon, model.InventoryStatusWithdrawPending, now); err != nil {
		t.Fatalf("won -> pending failed: %v", err)
	}
	err = repo.TransitionInventoryStatus(ctx, item.ID, 1, model.InventoryStatusWon, model.InventoryStatusWithdrawPending, now)
	if !errors.As(err, new(domainerrors.InvalidStatusTransitionError)) {
		t.Fatalf("replayed transition should fail, got %v", err)
	}
	if err := repo.TransitionInventoryStatus(ctx, item.ID, 1, model.InventoryStatusWithdrawPending, model.InventoryStatusWithdrawn, now); err != nil {
		t.Fatalf("pending -> withdrawn failed: %v", err)
	}
	err = repo.TransitionInventoryStatus(ctx, item.ID, 1, model.InventoryStatusWithdrawn, model.InventoryStatusWon, now)
	if !errors.As(err, new(domainerrors.InvalidStatusTransitionError)) {
		t.Fatalf("backward transition should fail, got %v", err)
	}

	_, err = repo.GetInventoryItem(ctx, item.ID, 2)
	if !errors.As(err, new(domainerrors.NotFoundError)) {
		t.Errorf("foreign item should be not found, got %v", err)
	}
}

func TestDueReminders_ExcludesBannedAndFuture(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []int64{1, 2, 3} {
		mustUser(t, repo, id, 0)
	}
	_ = repo.TouchReminder(ctx, 1, now.Add(-time.Hour), now.Add(-time.Minute))
	_ = repo.TouchReminder(ctx, 2, now.Add(-time.Hour), now.Add(-time.Minute))
	_ = repo.TouchReminder(ctx, 3, now, now.Add(time.Hour))
	_ = repo.SetBanned(ctx, 2, true)

	due, err := repo.DueReminders(ctx, now, 0)
	if err != nil {
		t.Fatalf("due failed: %v", err)
	}
	if len(due) != 1 || due[0].UserID != 1 {
		t.Fatalf("expected only user 1 due, got %+v", due)
	}

	if err := repo.ClearNextReminder(ctx, 1, true); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	state, _, _ := repo.GetReminder(ctx, 1)
	if state.NextReminderAt != nil || !state.FirstSequenceDone {
		t.Errorf("expected cleared and done, got %+v", state)
	}
}

func TestRecordPayment_IdempotentByChargeID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 0)

	p := PaymentRecord{ChargeID: "ch_1", UserID: 1, Payload: "buy_attempt_1", Currency: "XTR", Amount: 1, Attempts: 1}
	credited, attempts, err := repo.RecordPayment(ctx, p)
	if err != nil || !credited || attempts != 1 {
		t.Fatalf("first payment: credited=%v attempts=%d err=%v", credited, attempts, err)
	}
	credited, attempts, err = repo.RecordPayment(ctx, p)
	if err != nil || credited || attempts != 1 {
		t.Fatalf("replayed payment: credited=%v attempts=%d err=%v", credited, attempts, err)
	}
}

func TestLoadSettings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	defaults := model.Settings{RevealProbability: 0.1, AttemptPrice: 1}

	got, err := repo.LoadSettings(ctx, defaults)
	if err != nil || got != defaults {
		t.Fatalf("expected defaults, got %+v err=%v", got, err)
	}

	_ = repo.SetSetting(ctx, SettingRevealProbability, "0.35")
	_ = repo.SetSetting(ctx, SettingAttemptPrice, "abc")
	got, err = repo.LoadSettings(ctx, defaults)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.RevealProbability != 0.35 || got.AttemptPrice != 1 {
		t.Errorf("unexpected settings: %+v", got)
	}

	for _, raw := range []string{"NaN", "Inf", "-Inf"} {
		_ = repo.SetSetting(ctx, SettingRevealProbability, raw)
		got, err = repo.LoadSettings(ctx, defaults)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.RevealProbability != defaults.RevealProbability {
			t.Errorf("stored %q: probability = %v, want default %v", raw, got.RevealProbability, defaults.RevealProbability)
		}
	}
}

func TestStats(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	mustUser(t, repo, 1, 4)
	mustUser(t, repo, 2, 1)
	_ = repo.SetBanned(ctx, 2, true)
	_, _ = repo.CreateGift(ctx, model.Gift{Title: "Bear", DropChance: 1, Active: true})

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Users != 2 || stats.BannedUsers != 1 || stats.AttemptsOutstanding != 5 || stats.ActiveGifts != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
