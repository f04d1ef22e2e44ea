package repository

import (
	"context"
	"fmt"
)

// Stats: 관리자 통계 집계
type Stats struct {
	Users               int64 `json:"users"`
	BannedUsers         int64 `json:"bannedUsers"`
	AttemptsOutstanding int64 `json:"attemptsOutstanding"`
	ActiveGifts         int64 `json:"activeGifts"`
	InventoryWon        int64 `json:"inventoryWon"`
	InventoryPending    int64 `json:"inventoryWithdrawPending"`
	InventoryWithdrawn  int64 `json:"inventoryWithdrawn"`
	StartSponsors       int64 `json:"startSponsors"`
	TaskSponsors        int64 `json:"taskSponsors"`
	Payments            int64 `json:"payments"`
}

// Stats: 전체 집계를 계산한다.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	if r == nil || r.db == nil {
		return Stats{}, fmt.Errorf("db is nil")
	}
	db := r.db.WithContext(ctx)
	var s Stats

	counts := []struct {
		target *int64
		model  any
		where  string
		args   []any
	}{
		{&s.Users, &User{}, "", nil},
		{&s.BannedUsers, &User{}, "is_banned = ?", []any{true}},
		{&s.ActiveGifts, &Gift{}, "is_active = ?", []any{true}},
		{&s.InventoryWon, &InventoryItem{}, "status = ?", []any{"won"}},
		{&s.InventoryPending, &InventoryItem{}, "status = ?", []any{"withdraw_pending"}},
		{&s.InventoryWithdrawn, &InventoryItem{}, "status = ?", []any{"withdrawn"}},
		{&s.StartSponsors, &StartSponsor{}, "is_active = ?", []any{true}},
		{&s.TaskSponsors, &TaskSponsor{}, "is_active = ?", []any{true}},
		{&s.Payments, &Payment{}, "", nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.target).Error; err != nil {
			return Stats{}, dbError("stats_count", err)
		}
	}

	if err := db.Model(&User{}).Select("COALESCE(SUM(attempts), 0)").Scan(&s.AttemptsOutstanding).Error; err != nil {
		return Stats{}, dbError("stats_attempts", err)
	}
	return s, nil
}
