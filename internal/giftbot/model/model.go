package model

import (
	"math"
	"strings"
	"time"
)

// SponsorKind: 스폰서 유형 (channel / bot / link)
type SponsorKind string

const (
	// SponsorKindChannel: 구독 여부를 getChatMember 로 확인할 수 있는 채널
	SponsorKindChannel SponsorKind = "channel"
	// SponsorKindBot: 안내용 봇 링크
	SponsorKindBot SponsorKind = "bot"
	// SponsorKindLink: 안내용 외부 링크
	SponsorKindLink SponsorKind = "link"
)

// ParseSponsorKind: 문자열을 SponsorKind 로 변환한다. 알 수 없는 값은 channel 로 취급한다.
func ParseSponsorKind(raw string) SponsorKind {
	switch SponsorKind(strings.ToLower(strings.TrimSpace(raw))) {
	case SponsorKindBot:
		return SponsorKindBot
	case SponsorKindLink:
		return SponsorKindLink
	default:
		return SponsorKindChannel
	}
}

// IsVerifiable: 멤버십 조회로 완료 여부를 검증할 수 있는 유형인지 여부
func (k SponsorKind) IsVerifiable() bool {
	return k == SponsorKindChannel
}

// Sponsor: 온보딩/과제 스폰서 공통 표현
type Sponsor struct {
	ID              int64
	Title           string
	Kind            SponsorKind
	ChannelID       int64
	ChannelUsername string
	InviteLink      string
	Active          bool
	SortOrder       int
	BonusAttempts   int // 과제 스폰서 전용
}

// Checkable: 실제로 구독 확인 대상인지 여부 (channel 이면서 channel id 가 있어야 함)
func (s Sponsor) Checkable() bool {
	return s.Kind.IsVerifiable() && s.ChannelID != 0
}

// Link: 안내 버튼에 쓸 URL. 초대 링크가 우선이고, 없으면 username 으로 만든다.
func (s Sponsor) Link() string {
	if link := strings.TrimSpace(s.InviteLink); link != "" {
		return link
	}
	if username := strings.TrimPrefix(strings.TrimSpace(s.ChannelUsername), "@"); username != "" {
		return "https://t.me/" + username
	}
	return ""
}

// Gift: 경품 카탈로그 항목. DropChance 는 절대 확률이 아니라 상대 가중치다.
type Gift struct {
	ID         int64
	Title      string
	Emoji      string
	Price      int
	DropChance float64
	Active     bool
}

// User: 사용자 레코드
type User struct {
	ID                   int64
	Username             string
	FirstName            string
	LastName             string
	Attempts             int
	Banned               bool
	StartMessageID       *int
	OnboardingRewardedAt *time.Time
	CreatedAt            time.Time
}

// DisplayName: 인사말에 쓸 이름
func (u User) DisplayName(fallback string) string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return fallback
}

// UIState: 사용자별 단일 UI 메시지 상태
type UIState struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Screen    string
	Payload   []byte
	UpdatedAt time.Time
}

// Settings: 요청 단위로 주입되는 전역 설정 스냅샷
type Settings struct {
	RevealProbability float64
	AttemptPrice      int
}

// ClampedRevealProbability: [0,1] 로 제한한 칸별 경품 배치 확률
func (s Settings) ClampedRevealProbability() float64 {
	switch {
	case math.IsNaN(s.RevealProbability), s.RevealProbability < 0:
		return 0
	case s.RevealProbability > 1:
		return 1
	default:
		return s.RevealProbability
	}
}

// ReminderState: 비활성 리마인더 진행 상태
type ReminderState struct {
	UserID            int64
	LastActivityAt    time.Time
	NextReminderAt    *time.Time
	Stage             int
	FirstSequenceDone bool
}

// JoinRequest: 가입 요청 기록
type JoinRequest struct {
	UserID      int64
	ChannelID   int64
	RequestedAt time.Time
}
