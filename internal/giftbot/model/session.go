package model

import "time"

const (
	// GridSize: 보드 한 변의 칸 수
	GridSize = 6
	// CellCount: 보드 전체 칸 수
	CellCount = GridSize * GridSize
	// SessionSchemaVersion: game_sessions.board 문서의 현재 스키마 버전
	SessionSchemaVersion = 1
)

// CellGift: 보드 생성 시점에 칸에 숨겨진 경품 스냅샷
type CellGift struct {
	GiftID int64  `json:"giftId"`
	Title  string `json:"title"`
	Emoji  string `json:"emoji,omitempty"`
}

// PendingWin: 열었지만 아직 인벤토리로 옮기지 않은 당첨
type PendingWin struct {
	GiftID int64  `json:"giftId"`
	Title  string `json:"title"`
}

// Board: 칸 개폐 상태와 숨겨진 경품 배치
type Board struct {
	Opened []bool      `json:"opened"`
	Gifts  []*CellGift `json:"gifts"`
}

// NewBoard: 모든 칸이 닫힌 보드를 만든다. gifts 는 CellCount 길이여야 한다.
func NewBoard(gifts []*CellGift) Board {
	hidden := make([]*CellGift, CellCount)
	copy(hidden, gifts)
	return Board{
		Opened: make([]bool, CellCount),
		Gifts:  hidden,
	}
}

// Valid: 칸 수가 고정 크기와 일치하는지 확인한다.
func (b Board) Valid() bool {
	return len(b.Opened) == CellCount && len(b.Gifts) == CellCount
}

// GameSession: 사용자별 보드 세션 (game_sessions 한 행)
type GameSession struct {
	UserID        int64
	SchemaVersion int
	Board         Board
	PendingWins   []PendingWin
	Finished      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive: 진행 중 세션 여부
func (s *GameSession) IsActive() bool {
	return s != nil && !s.Finished
}

// HiddenGiftCount: 보드에 숨겨진 경품 수
func (s *GameSession) HiddenGiftCount() int {
	count := 0
	for _, gift := range s.Board.Gifts {
		if gift != nil {
			count++
		}
	}
	return count
}

// RevealAllGifts: 아직 닫힌 경품 칸을 모두 연다.
func (s *GameSession) RevealAllGifts() {
	for i, gift := range s.Board.Gifts {
		if gift != nil {
			s.Board.Opened[i] = true
		}
	}
}
