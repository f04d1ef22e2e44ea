// Package game 은 6x6 경품 보드 세션의 상태 기계를 구현한다.
package game

import (
	"math/rand/v2"
	"sort"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// RandomFunc: [0,1) 범위 난수 공급자. 테스트에서 고정 수열로 교체한다.
type RandomFunc func() float64

// defaultRandom 은 고루틴 안전한 전역 소스를 쓴다.
func defaultRandom() float64 { return rand.Float64() }

type weightedGift struct {
	gift          model.Gift
	cumulativeSum float64
}

// GiftPicker: 경품 카탈로그에서 가중치로 하나를 고른다.
// 가중치가 모두 0 이하이면 균등하게 고른다.
type GiftPicker struct {
	entries []weightedGift
	total   float64
}

// NewGiftPicker: 카탈로그가 비어 있으면 ErrNoGiftsConfigured.
func NewGiftPicker(gifts []model.Gift) (*GiftPicker, error) {
	if len(gifts) == 0 {
		return nil, domainerrors.ErrNoGiftsConfigured
	}

	entries := make([]weightedGift, 0, len(gifts))
	total := 0.0
	for _, gift := range gifts {
		weight := gift.DropChance
		if weight < 0 {
			weight = 0
		}
		total += weight
		entries = append(entries, weightedGift{gift: gift, cumulativeSum: total})
	}
	return &GiftPicker{entries: entries, total: total}, nil
}

// Pick: u ∈ [0, Σw) 를 뽑아 누적 가중치가 u 를 처음 넘는 경품을 반환한다.
func (p *GiftPicker) Pick(random RandomFunc) model.Gift {
	if p.total <= 0 {
		idx := int(random() * float64(len(p.entries)))
		return p.entries[clampIndex(idx, len(p.entries))].gift
	}

	target := random() * p.total
	idx := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].cumulativeSum > target
	})
	return p.entries[clampIndex(idx, len(p.entries))].gift
}

func clampIndex(idx, n int) int {
	switch {
	case idx < 0:
		return 0
	case idx >= n:
		return n - 1
	default:
		return idx
	}
}

// BuildBoard: 칸마다 random() < probability 이면 경품을 하나 숨긴다.
// 카탈로그가 비어 있으면 경품 없는 보드와 ErrNoGiftsConfigured 를 함께 반환한다.
func BuildBoard(gifts []model.Gift, probability float64, random RandomFunc) (model.Board, error) {
	if random == nil {
		random = defaultRandom
	}

	picker, err := NewGiftPicker(gifts)
	if err != nil {
		return model.NewBoard(nil), err
	}

	hidden := make([]*model.CellGift, model.CellCount)
	for i := range hidden {
		if random() >= probability {
			continue
		}
		gift := picker.Pick(random)
		hidden[i] = &model.CellGift{GiftID: gift.ID, Title: gift.Title, Emoji: gift.Emoji}
	}
	return model.NewBoard(hidden), nil
}
