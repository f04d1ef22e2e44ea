package repository

import (
	"context"
	"fmt"
	"time"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

type inventoryRow struct {
	InventoryItem
	GiftTitle string `gorm:"column:gift_title"`
	GiftEmoji string `gorm:"column:gift_emoji"`
	Price     int    `gorm:"column:price"`
}

func (row inventoryRow) toModel() model.InventoryItem {
	return model.InventoryItem{
		ID:                  row.ID,
		UserID:              row.UserID,
		GiftID:              row.GiftID,
		GiftTitle:           row.GiftTitle,
		GiftEmoji:           row.GiftEmoji,
		Price:               row.Price,
		Status:              model.InventoryStatus(row.Status),
		WonAt:               row.WonAt,
		WithdrawRequestedAt: row.WithdrawRequestedAt,
		WithdrawnAt:         row.WithdrawnAt,
	}
}

const inventorySelect = "inventory_items.*, gifts.title AS gift_title, gifts.emoji AS gift_emoji, gifts.price AS price"

// AddInventoryItems: 당첨 하나당 won 상태 항목 하나를 만든다.
func (r *Repository) AddInventoryItems(ctx context.Context, userID int64, wins []model.PendingWin, now time.Time) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if len(wins) == 0 {
		return nil
	}
	items := make([]InventoryItem, 0, len(wins))
	for _, win := range wins {
		items = append(items, InventoryItem{
			UserID: userID,
			GiftID: win.GiftID,
			Status: string(model.InventoryStatusWon),
			WonAt:  now,
		})
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return dbError("add_inventory_items", err)
	}
	return nil
}

// ListInventory: 사용자 인벤토리 (최근 당첨 순). 경품이 삭제된 항목은 제외된다.
func (r *Repository) ListInventory(ctx context.Context, userID int64) ([]model.InventoryItem, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []inventoryRow
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Select(inventorySelect).
		Joins("JOIN gifts ON gifts.id = inventory_items.gift_id").
		Where("inventory_items.user_id = ?", userID).
		Order("inventory_items.won_at DESC, inventory_items.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, dbError("list_inventory", err)
	}
	items := make([]model.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

// GetInventoryItem: 사용자 소유 항목을 조회한다. 없으면 NotFoundError.
func (r *Repository) GetInventoryItem(ctx context.Context, itemID, userID int64) (model.InventoryItem, error) {
	if r == nil || r.db == nil {
		return model.InventoryItem{}, fmt.Errorf("db is nil")
	}
	var rows []inventoryRow
	if err := r.db.WithContext(ctx).Table("inventory_items").
		Select(inventorySelect).
		Joins("JOIN gifts ON gifts.id = inventory_items.gift_id").
		Where("inventory_items.id = ? AND inventory_items.user_id = ?", itemID, userID).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return model.InventoryItem{}, dbError("get_inventory_item", err)
	}
	if len(rows) == 0 {
		return model.InventoryItem{}, domainerrors.NotFoundError{Entity: "inventory_item", ID: itemID}
	}
	return rows[0].toModel(), nil
}

// TransitionInventoryStatus: 한 단계 앞으로만 상태를 바꾼다.
// 현재 상태가 from 이 아니면 InvalidStatusTransitionError.
func (r *Repository) TransitionInventoryStatus(ctx context.Context, itemID, userID int64, from, to model.InventoryStatus, now time.Time) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if !from.CanTransitionTo(to) {
		return domainerrors.InvalidStatusTransitionError{ItemID: itemID, From: string(from), To: string(to)}
	}

	updates := map[string]any{"status": string(to)}
	switch to {
	case model.InventoryStatusWithdrawPending:
		updates["withdraw_requested_at"] = now
	case model.InventoryStatusWithdrawn:
		updates["withdrawn_at"] = now
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&InventoryItem{}).
		Where("id = ? AND user_id = ? AND status = ?", itemID, userID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return dbError("transition_inventory_status", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var current InventoryItem
	if err := db.Where("id = ? AND user_id = ?", itemID, userID).Take(&current).Error; err != nil {
		if isNotFound(err) {
			return domainerrors.NotFoundError{Entity: "inventory_item", ID: itemID}
		}
		return dbError("transition_inventory_status_reload", err)
	}
	return domainerrors.InvalidStatusTransitionError{ItemID: itemID, From: current.Status, To: string(to)}
}
