package config

import "time"

// ServerConfig: HTTP 서버 주소/포트 설정입니다.
type ServerConfig struct {
	Host string // 서버 바인딩 호스트
	Port int    // 서버 리스닝 포트
}

// ServerTuningConfig: HTTP 서버 튜닝 설정(Timeouts, Limits)입니다.
type ServerTuningConfig struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// RedisConfig: Redis/Valkey 캐시 연결 설정입니다.
type RedisConfig struct {
	Host     string // 서버 호스트
	Port     int    // 서버 포트
	Password string // 인증 패스워드
	DB       int    // 사용할 DB 번호

	DialTimeout  time.Duration // 연결 타임아웃
	ReadTimeout  time.Duration // 읽기 타임아웃
	WriteTimeout time.Duration // 쓰기 타임아웃

	PoolSize     int // 커넥션 풀 크기
	MinIdleConns int // 최소 유휴 커넥션 수
}

// DatabaseConfig: GORM 데이터베이스 연결 설정입니다.
// Driver 가 "sqlite" 면 SQLitePath 만 사용하고, "postgres" 면 나머지 필드를 사용한다.
type DatabaseConfig struct {
	Driver     string
	SQLitePath string

	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

// LogConfig: 파일 로그 로테이션 설정입니다.
type LogConfig struct {
	Dir string // 로그 파일 디렉터리

	MaxSizeMB  int  // 단일 파일 최대 크기 (MB)
	MaxBackups int  // 보관할 백업 파일 수
	MaxAgeDays int  // 백업 파일 보관 일수
	Compress   bool // 백업 파일 압축 여부
}

// TelemetryConfig: OpenTelemetry 분산 추적 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // 예: "jaeger:4317"
	OTLPInsecure   bool
	SampleRate     float64 // 0.0 ~ 1.0
}
