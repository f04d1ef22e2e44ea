package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	commonconfig "github.com/park285/gift-grid-bot/internal/common/config"
)

// ServerConfig: HTTP 서버 설정 alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// RedisConfig: Valkey 연결 설정 alias
type RedisConfig = commonconfig.RedisConfig

// DatabaseConfig: DB 연결 설정 alias
type DatabaseConfig = commonconfig.DatabaseConfig

// LogConfig: 로그 파일 설정 alias
type LogConfig = commonconfig.LogConfig

// TelegramConfig: Bot API 연결 설정
type TelegramConfig struct {
	Token       string
	APIEndpoint string // 기본: tgbotapi.APIEndpoint 형식 ("https://api.telegram.org/bot%s/%s")
	PollTimeout int    // long polling 타임아웃(초)
	CallTimeout time.Duration
	Workers     int // 업데이트 동시 처리 워커 수
}

// AdminConfig: 관리자 설정
type AdminConfig struct {
	UserIDs              []int64
	WithdrawReviewChatID int64  // 0 이면 출금 알림 전송 안 함
	APIKey               string // /admin/stats 접근 키 (비어있으면 비활성)
	SupportURL           string // 프로필 화면 지원 버튼 링크 (비어있으면 숨김)
}

// IsAdmin: 관리자 여부
func (c AdminConfig) IsAdmin(userID int64) bool {
	return slices.Contains(c.UserIDs, userID)
}

// GameConfig: settings 테이블 값이 없을 때의 기본값과 온보딩 보너스
type GameConfig struct {
	DefaultRevealProbability float64
	DefaultAttemptPrice      int
	OnboardingBonusAttempts  int
}

// SponsorConfig: 구독 확인 관련 설정
type SponsorConfig struct {
	JoinRequestTTL     time.Duration
	MembershipCacheTTL time.Duration // 0 이면 캐시 비활성
}

// ReminderConfig: 리마인더 스윕 설정
type ReminderConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	Concurrency   int
	RatePerSecond float64
	BatchLimit    int
}

// UserLockConfig: 사용자 락 설정
type UserLockConfig struct {
	TTL time.Duration
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Redis        RedisConfig
	Database     DatabaseConfig
	Log          LogConfig
	Telemetry    commonconfig.TelemetryConfig
	Telegram     TelegramConfig
	Admin        AdminConfig
	Game         GameConfig
	Sponsor      SponsorConfig
	Reminder     ReminderConfig
	UserLock     UserLockConfig
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := commonconfig.ReadServerConfigFromEnv(DefaultServerPort)
	if err != nil {
		return nil, fmt.Errorf("read server config failed: %w", err)
	}
	serverTuning, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read server tuning config failed: %w", err)
	}
	redisCfg, err := readRedisConfig()
	if err != nil {
		return nil, err
	}
	database, err := commonconfig.ReadDatabaseConfigFromEnv(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("read database config failed: %w", err)
	}
	log, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read log config failed: %w", err)
	}
	telemetry, err := commonconfig.ReadTelemetryConfigFromEnv(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}
	telegram, err := readTelegramConfig()
	if err != nil {
		return nil, err
	}
	admin, err := readAdminConfig()
	if err != nil {
		return nil, err
	}
	game, err := readGameConfig()
	if err != nil {
		return nil, err
	}
	sponsor, err := readSponsorConfig()
	if err != nil {
		return nil, err
	}
	reminder, err := readReminderConfig()
	if err != nil {
		return nil, err
	}
	userLock, err := readUserLockConfig()
	if err != nil {
		return nil, err
	}
	// 락 보유 구간(TTL 의 80%)이 텔레그램 호출 한 번보다 길어야 한다.
	if userLock.TTL-userLock.TTL/5 <= telegram.CallTimeout {
		return nil, fmt.Errorf("USER_LOCK_TTL_SECONDS (%v) too short for TELEGRAM_CALL_TIMEOUT_SECONDS (%v)", userLock.TTL, telegram.CallTimeout)
	}

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		Redis:        redisCfg,
		Database:     database,
		Log:          log,
		Telemetry:    telemetry,
		Telegram:     telegram,
		Admin:        admin,
		Game:         game,
		Sponsor:      sponsor,
		Reminder:     reminder,
		UserLock:     userLock,
	}, nil
}

func readRedisConfig() (RedisConfig, error) {
	cfg, err := commonconfig.ReadRedisConfigFromEnv(
		[]string{"CACHE_HOST", "REDIS_HOST"},
		[]string{"CACHE_PORT", "REDIS_PORT"},
		[]string{"CACHE_PASSWORD", "REDIS_PASSWORD"},
		"localhost",
		6379,
	)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis config failed: %w", err)
	}
	return cfg, nil
}

func readTelegramConfig() (TelegramConfig, error) {
	token := commonconfig.StringFromEnvFirstNonEmpty([]string{"BOT_TOKEN", "TELEGRAM_BOT_TOKEN"}, "")
	if token == "" {
		return TelegramConfig{}, errors.New("BOT_TOKEN is required")
	}

	pollTimeout, err := commonconfig.IntFromEnv("TELEGRAM_POLL_TIMEOUT_SECONDS", 60)
	if err != nil {
		return TelegramConfig{}, fmt.Errorf("read TELEGRAM_POLL_TIMEOUT_SECONDS failed: %w", err)
	}
	callTimeout, err := commonconfig.DurationSecondsFromEnv("TELEGRAM_CALL_TIMEOUT_SECONDS", 10)
	if err != nil {
		return TelegramConfig{}, fmt.Errorf("read TELEGRAM_CALL_TIMEOUT_SECONDS failed: %w", err)
	}
	workers, err := commonconfig.IntFromEnv("TELEGRAM_WORKERS", 10)
	if err != nil {
		return TelegramConfig{}, fmt.Errorf("read TELEGRAM_WORKERS failed: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}

	return TelegramConfig{
		Token:       token,
		APIEndpoint: commonconfig.StringFromEnv("TELEGRAM_API_ENDPOINT", ""),
		PollTimeout: pollTimeout,
		CallTimeout: callTimeout,
		Workers:     workers,
	}, nil
}

func readAdminConfig() (AdminConfig, error) {
	ids, err := commonconfig.Int64ListFromEnv("ADMIN_IDS")
	if err != nil {
		return AdminConfig{}, fmt.Errorf("read ADMIN_IDS failed: %w", err)
	}
	reviewChatID, err := commonconfig.Int64FromEnv("WITHDRAW_REVIEW_CHAT_ID", 0)
	if err != nil {
		return AdminConfig{}, fmt.Errorf("read WITHDRAW_REVIEW_CHAT_ID failed: %w", err)
	}
	return AdminConfig{
		UserIDs:              ids,
		WithdrawReviewChatID: reviewChatID,
		APIKey:               commonconfig.StringFromEnvFirstNonEmpty([]string{"ADMIN_API_KEY", "HTTP_API_KEY"}, ""),
		SupportURL:           commonconfig.StringFromEnv("SUPPORT_URL", ""),
	}, nil
}

func readGameConfig() (GameConfig, error) {
	probability, err := commonconfig.Float64FromEnv("GAME_DEFAULT_REVEAL_PROBABILITY", DefaultRevealProbability)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read GAME_DEFAULT_REVEAL_PROBABILITY failed: %w", err)
	}
	price, err := commonconfig.IntFromEnv("GAME_DEFAULT_ATTEMPT_PRICE", DefaultAttemptPriceStars)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read GAME_DEFAULT_ATTEMPT_PRICE failed: %w", err)
	}
	bonus, err := commonconfig.IntFromEnv("ONBOARDING_BONUS_ATTEMPTS", DefaultOnboardingBonusAttempts)
	if err != nil {
		return GameConfig{}, fmt.Errorf("read ONBOARDING_BONUS_ATTEMPTS failed: %w", err)
	}
	if price <= 0 {
		return GameConfig{}, fmt.Errorf("invalid GAME_DEFAULT_ATTEMPT_PRICE: %d", price)
	}
	if bonus < 0 {
		return GameConfig{}, fmt.Errorf("invalid ONBOARDING_BONUS_ATTEMPTS: %d", bonus)
	}
	return GameConfig{
		DefaultRevealProbability: probability,
		DefaultAttemptPrice:      price,
		OnboardingBonusAttempts:  bonus,
	}, nil
}

func readSponsorConfig() (SponsorConfig, error) {
	ttl, err := commonconfig.DurationSecondsFromEnv("JOIN_REQUEST_TTL_SECONDS", JoinRequestTTLSeconds)
	if err != nil {
		return SponsorConfig{}, fmt.Errorf("read JOIN_REQUEST_TTL_SECONDS failed: %w", err)
	}
	cacheTTL, err := commonconfig.DurationSecondsFromEnv("MEMBERSHIP_CACHE_TTL_SECONDS", 30)
	if err != nil {
		return SponsorConfig{}, fmt.Errorf("read MEMBERSHIP_CACHE_TTL_SECONDS failed: %w", err)
	}
	return SponsorConfig{JoinRequestTTL: ttl, MembershipCacheTTL: cacheTTL}, nil
}

func readReminderConfig() (ReminderConfig, error) {
	enabled, err := commonconfig.BoolFromEnv("REMINDER_ENABLED", true)
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("read REMINDER_ENABLED failed: %w", err)
	}
	interval, err := commonconfig.DurationSecondsFromEnv("REMINDER_SWEEP_INTERVAL_SECONDS", 60)
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("read REMINDER_SWEEP_INTERVAL_SECONDS failed: %w", err)
	}
	concurrency, err := commonconfig.IntFromEnv("REMINDER_SEND_CONCURRENCY", 4)
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("read REMINDER_SEND_CONCURRENCY failed: %w", err)
	}
	rate, err := commonconfig.Float64FromEnv("REMINDER_SEND_RATE_PER_SECOND", 20)
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("read REMINDER_SEND_RATE_PER_SECOND failed: %w", err)
	}
	batch, err := commonconfig.IntFromEnv("REMINDER_BATCH_LIMIT", 500)
	if err != nil {
		return ReminderConfig{}, fmt.Errorf("read REMINDER_BATCH_LIMIT failed: %w", err)
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if rate <= 0 {
		return ReminderConfig{}, fmt.Errorf("invalid REMINDER_SEND_RATE_PER_SECOND: %v", rate)
	}
	return ReminderConfig{
		Enabled:       enabled,
		SweepInterval: interval,
		Concurrency:   concurrency,
		RatePerSecond: rate,
		BatchLimit:    batch,
	}, nil
}

func readUserLockConfig() (UserLockConfig, error) {
	ttl, err := commonconfig.DurationSecondsFromEnv("USER_LOCK_TTL_SECONDS", 15)
	if err != nil {
		return UserLockConfig{}, fmt.Errorf("read USER_LOCK_TTL_SECONDS failed: %w", err)
	}
	return UserLockConfig{TTL: ttl}, nil
}
