package model

import "time"

// InventoryStatus: 인벤토리 항목 상태
type InventoryStatus string

// 상태는 won → withdraw_pending → withdrawn 순서로만 진행한다.
const (
	InventoryStatusWon             InventoryStatus = "won"
	InventoryStatusWithdrawPending InventoryStatus = "withdraw_pending"
	InventoryStatusWithdrawn       InventoryStatus = "withdrawn"
)

func (s InventoryStatus) rank() int {
	switch s {
	case InventoryStatusWon:
		return 1
	case InventoryStatusWithdrawPending:
		return 2
	case InventoryStatusWithdrawn:
		return 3
	default:
		return 0
	}
}

// CanTransitionTo: 한 단계 앞으로의 전이만 허용한다.
func (s InventoryStatus) CanTransitionTo(next InventoryStatus) bool {
	from, to := s.rank(), next.rank()
	return from > 0 && to == from+1
}

// InventoryItem: 경품 정보가 결합된 인벤토리 항목
type InventoryItem struct {
	ID                  int64
	UserID              int64
	GiftID              int64
	GiftTitle           string
	GiftEmoji           string
	Price               int
	Status              InventoryStatus
	WonAt               time.Time
	WithdrawRequestedAt *time.Time
	WithdrawnAt         *time.Time
}
