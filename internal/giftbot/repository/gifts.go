package repository

import (
	"context"
	"fmt"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

func toGiftModel(g Gift) model.Gift {
	return model.Gift{
		ID:         g.ID,
		Title:      g.Title,
		Emoji:      g.Emoji,
		Price:      g.Price,
		DropChance: g.DropChance,
		Active:     g.IsActive,
	}
}

// ActiveGifts: 활성 경품 카탈로그 (sort_order, id 순)
func (r *Repository) ActiveGifts(ctx context.Context) ([]model.Gift, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []Gift
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, dbError("active_gifts", err)
	}
	gifts := make([]model.Gift, 0, len(rows))
	for _, row := range rows {
		gifts = append(gifts, toGiftModel(row))
	}
	return gifts, nil
}

// CreateGift: 경품을 추가하고 ID 를 반환한다 (관리자 작업).
func (r *Repository) CreateGift(ctx context.Context, g model.Gift) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}
	entity := Gift{
		Title:      g.Title,
		Emoji:      g.Emoji,
		Price:      g.Price,
		DropChance: g.DropChance,
		IsActive:   g.Active,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return 0, dbError("create_gift", err)
	}
	return entity.ID, nil
}
