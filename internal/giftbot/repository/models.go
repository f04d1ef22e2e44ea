package repository

import (
	"time"

	"gorm.io/datatypes"
)

// User: 사용자 레코드
type User struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	Username             string     `gorm:"column:username;not null;default:''"`
	FirstName            string     `gorm:"column:first_name;not null;default:''"`
	LastName             string     `gorm:"column:last_name;not null;default:''"`
	Attempts             int        `gorm:"column:attempts;not null;default:0"`
	IsBanned             bool       `gorm:"column:is_banned;not null;default:false;index"`
	StartMessageID       *int       `gorm:"column:start_message_id"`
	OnboardingRewardedAt *time.Time `gorm:"column:onboarding_rewarded_at"`
	CreatedAt            time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// UIState: 사용자당 한 행. message_id 는 항상 마지막으로 보여준 메시지를 가리킨다.
type UIState struct {
	UserID    int64          `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ChatID    int64          `gorm:"column:chat_id;not null"`
	MessageID int            `gorm:"column:message_id;not null"`
	Screen    string         `gorm:"column:screen;not null;default:''"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (UIState) TableName() string { return "ui_states" }

// StartSponsor: 온보딩 스폰서
type StartSponsor struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string    `gorm:"column:title;not null"`
	Kind            string    `gorm:"column:kind;not null;default:'channel'"`
	ChannelID       int64     `gorm:"column:channel_id;not null;default:0;index"`
	ChannelUsername string    `gorm:"column:channel_username;not null;default:''"`
	InviteLink      string    `gorm:"column:invite_link;not null;default:''"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	SortOrder       int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (StartSponsor) TableName() string { return "start_sponsors" }

// TaskSponsor: 과제 스폰서. 완료 시 BonusAttempts 만큼 한 번 지급된다.
type TaskSponsor struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string    `gorm:"column:title;not null"`
	Kind            string    `gorm:"column:kind;not null;default:'channel'"`
	ChannelID       int64     `gorm:"column:channel_id;not null;default:0"`
	ChannelUsername string    `gorm:"column:channel_username;not null;default:''"`
	InviteLink      string    `gorm:"column:invite_link;not null;default:''"`
	BonusAttempts   int       `gorm:"column:bonus_attempts;not null"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	SortOrder       int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (TaskSponsor) TableName() string { return "task_sponsors" }

// Gift: 경품 카탈로그
type Gift struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `gorm:"column:title;not null"`
	Emoji       string    `gorm:"column:emoji;not null;default:''"`
	PhotoFileID string    `gorm:"column:photo_file_id;not null;default:''"`
	Price       int       `gorm:"column:price;not null;default:0"`
	DropChance  float64   `gorm:"column:drop_chance;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Gift) TableName() string { return "gifts" }

// SponsorBonusGrant: (user_id, sponsor_id) 당 최대 한 건
type SponsorBonusGrant struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64      `gorm:"column:user_id;not null;uniqueIndex:idx_sponsor_bonus_grants_user_sponsor"`
	SponsorID       int64      `gorm:"column:sponsor_id;not null;uniqueIndex:idx_sponsor_bonus_grants_user_sponsor"`
	GrantedAttempts int        `gorm:"column:granted_attempts;not null"`
	GrantedAt       time.Time  `gorm:"column:granted_at;not null"`
	IsRevoked       bool       `gorm:"column:is_revoked;not null;default:false"`
	RevokedAt       *time.Time `gorm:"column:revoked_at"`
}

func (SponsorBonusGrant) TableName() string { return "sponsor_bonus_grants" }

// InventoryItem: 인벤토리 항목
type InventoryItem struct {
	ID                  int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID              int64      `gorm:"column:user_id;not null;index"`
	GiftID              int64      `gorm:"column:gift_id;not null"`
	Status              string     `gorm:"column:status;not null;default:'won'"`
	WonAt               time.Time  `gorm:"column:won_at;not null"`
	WithdrawRequestedAt *time.Time `gorm:"column:withdraw_requested_at"`
	WithdrawnAt         *time.Time `gorm:"column:withdrawn_at"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

// GameSession: 사용자별 보드 세션. board 는 schema_version 에 맞는 JSON 문서다.
type GameSession struct {
	UserID        int64          `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	SchemaVersion int            `gorm:"column:schema_version;not null"`
	Board         datatypes.JSON `gorm:"column:board;not null"`
	Finished      bool           `gorm:"column:finished;not null;default:false"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null"`
}

func (GameSession) TableName() string { return "game_sessions" }

// UserReminder: 리마인더 진행 상태
type UserReminder struct {
	UserID            int64      `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	LastActivityAt    time.Time  `gorm:"column:last_activity_at;not null"`
	NextReminderAt    *time.Time `gorm:"column:next_reminder_at;index"`
	Stage             int        `gorm:"column:stage;not null;default:0"`
	FirstSequenceDone bool       `gorm:"column:first_sequence_done;not null;default:false"`
}

func (UserReminder) TableName() string { return "user_reminders" }

// JoinRequest: 채널 가입 요청 기록. 만료는 TTL 비교로만 판단하고 삭제하지 않는다.
type JoinRequest struct {
	UserID      int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ChannelID   int64     `gorm:"column:channel_id;primaryKey;autoIncrement:false"`
	RequestedAt time.Time `gorm:"column:requested_at;not null"`
}

func (JoinRequest) TableName() string { return "join_requests" }

// Setting: key/value 전역 설정
type Setting struct {
	Key       string    `gorm:"column:setting_key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }

// Payment: 결제 기록. charge_id 당 한 번만 시도 횟수를 지급한다.
type Payment struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ChargeID  string    `gorm:"column:charge_id;not null;uniqueIndex"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Payload   string    `gorm:"column:payload;not null"`
	Currency  string    `gorm:"column:currency;not null"`
	Amount    int       `gorm:"column:amount;not null"`
	Attempts  int       `gorm:"column:attempts;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Payment) TableName() string { return "payments" }
