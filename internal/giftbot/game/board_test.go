package game

import (
	"errors"
	"math"
	"testing"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// sequence: 주어진 값을 차례로 반환하고, 다 쓰면 마지막 값을 반복한다.
func sequence(values ...float64) RandomFunc {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func TestGiftPicker_Pick(t *testing.T) {
	gifts := []model.Gift{
		{ID: 1, Title: "Bear", DropChance: 1},
		{ID: 2, Title: "Heart", DropChance: 3},
		{ID: 3, Title: "Rocket", DropChance: 0},
	}
	picker, err := NewGiftPicker(gifts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		u    float64
		want int64
	}{
		{name: "start of first range", u: 0, want: 1},
		{name: "inside first range", u: 0.2, want: 1},
		{name: "first range boundary goes to next", u: 0.25, want: 2},
		{name: "end of second range", u: 0.999, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := picker.Pick(sequence(tt.u)); got.ID != tt.want {
				t.Errorf("Pick(u=%v) = %d, want %d", tt.u, got.ID, tt.want)
			}
		})
	}
}

func TestGiftPicker_ZeroWeightsUniform(t *testing.T) {
	picker, err := NewGiftPicker([]model.Gift{
		{ID: 1, DropChance: 0},
		{ID: 2, DropChance: 0},
		{ID: 3, DropChance: -1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for u, want := range map[float64]int64{0: 1, 0.4: 2, 0.9: 3} {
		if got := picker.Pick(sequence(u)); got.ID != want {
			t.Errorf("uniform Pick(u=%v) = %d, want %d", u, got.ID, want)
		}
	}
}

func TestBuildBoard(t *testing.T) {
	gifts := []model.Gift{{ID: 1, Title: "Bear", Emoji: "🧸", DropChance: 1}}

	t.Run("probability one fills every cell", func(t *testing.T) {
		board, err := BuildBoard(gifts, 1, sequence(0.5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !board.Valid() {
			t.Fatal("board must have 36 cells")
		}
		for i, gift := range board.Gifts {
			if gift == nil || gift.GiftID != 1 || gift.Emoji != "🧸" {
				t.Fatalf("cell %d: expected Bear, got %+v", i, gift)
			}
		}
	})

	t.Run("probability zero leaves board empty", func(t *testing.T) {
		board, err := BuildBoard(gifts, 0, sequence(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, gift := range board.Gifts {
			if gift != nil {
				t.Fatalf("cell %d: expected empty, got %+v", i, gift)
			}
		}
	})

	t.Run("nan probability clamps to empty board", func(t *testing.T) {
		probability := model.Settings{RevealProbability: math.NaN()}.ClampedRevealProbability()
		board, err := BuildBoard(gifts, probability, sequence(0.99))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, gift := range board.Gifts {
			if gift != nil {
				t.Fatalf("cell %d: expected empty, got %+v", i, gift)
			}
		}
	})

	t.Run("per cell draw below probability", func(t *testing.T) {
		// 칸 0: 0.05 < 0.1 → 경품 (가중치 draw 0.0), 칸 1 이후: 0.5 → 빈 칸
		board, err := BuildBoard(gifts, 0.1, sequence(0.05, 0.0, 0.5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if board.Gifts[0] == nil {
			t.Error("cell 0 should hide a gift")
		}
		for i := 1; i < model.CellCount; i++ {
			if board.Gifts[i] != nil {
				t.Fatalf("cell %d should be empty", i)
			}
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		board, err := BuildBoard(nil, 1, sequence(0))
		if !errors.Is(err, domainerrors.ErrNoGiftsConfigured) {
			t.Fatalf("expected ErrNoGiftsConfigured, got %v", err)
		}
		if !board.Valid() {
			t.Fatal("empty catalog must still produce a 36 cell board")
		}
		for _, gift := range board.Gifts {
			if gift != nil {
				t.Fatal("empty catalog must not hide gifts")
			}
		}
	})
}
