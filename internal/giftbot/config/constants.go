package config

// 서비스 식별 상수.
const (
	// ServiceName: 로그/텔레메트리에 사용하는 서비스 이름
	ServiceName = "giftbot"
	// LogFileName: 파일 로깅 시 서비스별 로그 파일명
	LogFileName = "giftbot.log"
	// DefaultServerPort: HTTP(health/metrics/admin) 기본 포트
	DefaultServerPort = 40262
	// MessagesLocale: 사용자 메시지 YAML 루트 키
	MessagesLocale = "ru"
)

// Valkey 키 접두사.
const (
	// RedisKeyUserLock: 사용자 단위 처리 락
	RedisKeyUserLock = "giftbot:lock:user"
	// RedisKeyMembership: 채널 구독 확인 결과 캐시
	RedisKeyMembership = "giftbot:membership"
)

// 기본값 상수.
const (
	// DefaultRevealProbability: settings 에 값이 없을 때의 칸별 선물 배치 확률
	DefaultRevealProbability = 0.10
	// DefaultAttemptPriceStars: settings 에 값이 없을 때의 시도 1회 가격 (Telegram Stars)
	DefaultAttemptPriceStars = 1
	// DefaultOnboardingBonusAttempts: 시작 스폰서 구독 확인 시 1회 지급되는 시도 수
	DefaultOnboardingBonusAttempts = 3
	// JoinRequestTTLSeconds: 가입 요청 기록이 구독으로 인정되는 시간 (24시간)
	JoinRequestTTLSeconds = 24 * 60 * 60
)
