package config

import (
	"fmt"
	"strings"
	"time"
)

// ReadServerConfigFromEnv: HTTP 서버 호스트와 포트 설정을 환경 변수에서 읽어옵니다.
func ReadServerConfigFromEnv(defaultPort int) (ServerConfig, error) {
	serverPort, err := IntFromEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read SERVER_PORT failed: %w", err)
	}

	return ServerConfig{
		Host: StringFromEnv("SERVER_HOST", "0.0.0.0"),
		Port: serverPort,
	}, nil
}

// ReadServerTuningConfigFromEnv: HTTP 서버 튜닝 설정(Timeouts, Limits)을 환경 변수에서 읽어옵니다.
func ReadServerTuningConfigFromEnv() (ServerTuningConfig, error) {
	readHeaderTimeout, err := DurationSecondsFromEnv("SERVER_READ_HEADER_TIMEOUT_SECONDS", 5)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_READ_HEADER_TIMEOUT_SECONDS failed: %w", err)
	}

	// 0 을 명시하면 비활성화
	idleTimeout, err := DurationSecondsFromEnv("SERVER_IDLE_TIMEOUT_SECONDS", 90)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_IDLE_TIMEOUT_SECONDS failed: %w", err)
	}

	maxHeaderBytes, err := IntFromEnv("SERVER_MAX_HEADER_BYTES", 1<<20)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_MAX_HEADER_BYTES failed: %w", err)
	}
	if maxHeaderBytes < 0 {
		return ServerTuningConfig{}, fmt.Errorf("invalid SERVER_MAX_HEADER_BYTES: %d", maxHeaderBytes)
	}

	return ServerTuningConfig{
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}, nil
}

// ReadRedisConfigFromEnv: Redis(Valkey) 연결 설정을 환경 변수에서 읽어옵니다.
// 여러 환경 변수 키 중 첫 번째로 값이 존재하는 것을 사용합니다.
func ReadRedisConfigFromEnv(
	hostKeys []string,
	portKeys []string,
	passwordKeys []string,
	defaultHost string,
	defaultPort int,
) (RedisConfig, error) {
	port, err := IntFromEnvFirstNonEmpty(portKeys, defaultPort)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis port failed: %w", err)
	}

	return RedisConfig{
		Host:     StringFromEnvFirstNonEmpty(hostKeys, defaultHost),
		Port:     port,
		Password: StringFromEnvFirstNonEmpty(passwordKeys, ""),
		DB:       0,

		DialTimeout:  10 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		PoolSize:     32,
		MinIdleConns: 4,
	}, nil
}

// ReadDatabaseConfigFromEnv: DB_DRIVER 에 따라 SQLite 또는 PostgreSQL 연결 설정을 읽어옵니다.
func ReadDatabaseConfigFromEnv(defaultName string) (DatabaseConfig, error) {
	driver := strings.ToLower(StringFromEnv("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres":
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: %q", driver)
	}

	port, err := IntFromEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_PORT failed: %w", err)
	}
	maxOpen, err := IntFromEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_MAX_OPEN_CONNS failed: %w", err)
	}
	maxIdle, err := IntFromEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_MAX_IDLE_CONNS failed: %w", err)
	}

	return DatabaseConfig{
		Driver:       driver,
		SQLitePath:   StringFromEnv("DB_SQLITE_PATH", defaultName+".db"),
		Host:         StringFromEnv("DB_HOST", "localhost"),
		Port:         port,
		Name:         StringFromEnv("DB_NAME", defaultName),
		User:         StringFromEnv("DB_USER", defaultName+"_app"),
		Password:     StringFromEnv("DB_PASSWORD", ""),
		SSLMode:      StringFromEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: maxOpen,
		MaxIdleConns: maxIdle,
	}, nil
}

// ReadLogConfigFromEnv: 로그 파일 출력 설정(디렉터리, 크기, 백업 수)을 환경 변수에서 읽어옵니다.
func ReadLogConfigFromEnv() (LogConfig, error) {
	dir := StringFromEnv("LOG_DIR", "")
	if strings.TrimSpace(dir) == "" {
		return LogConfig{Dir: ""}, nil
	}

	maxSizeMB, err := IntFromEnv("LOG_FILE_MAX_SIZE_MB", 1)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_MAX_SIZE_MB failed: %w", err)
	}
	maxBackups, err := IntFromEnv("LOG_FILE_MAX_BACKUPS", 30)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_MAX_BACKUPS failed: %w", err)
	}
	maxAgeDays, err := IntFromEnv("LOG_FILE_MAX_AGE_DAYS", 7)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_MAX_AGE_DAYS failed: %w", err)
	}
	if maxSizeMB <= 0 || maxBackups <= 0 || maxAgeDays <= 0 {
		return LogConfig{}, fmt.Errorf(
			"invalid log file config: size=%d backups=%d age_days=%d",
			maxSizeMB, maxBackups, maxAgeDays,
		)
	}

	compress, err := BoolFromEnv("LOG_FILE_COMPRESS", true)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_COMPRESS failed: %w", err)
	}

	return LogConfig{
		Dir:        dir,
		MaxSizeMB:  maxSizeMB,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAgeDays,
		Compress:   compress,
	}, nil
}

// ReadTelemetryConfigFromEnv: OpenTelemetry 설정을 OTEL_* 환경 변수에서 읽어옵니다.
// 기본값은 비활성화 상태입니다.
func ReadTelemetryConfigFromEnv(serviceName string) (TelemetryConfig, error) {
	enabled, err := BoolFromEnv("OTEL_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_ENABLED failed: %w", err)
	}
	insecure, err := BoolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_EXPORTER_OTLP_INSECURE failed: %w", err)
	}
	sampleRate, err := Float64FromEnv("OTEL_SAMPLE_RATE", 1.0)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_SAMPLE_RATE failed: %w", err)
	}

	return TelemetryConfig{
		Enabled:        enabled,
		ServiceName:    StringFromEnv("OTEL_SERVICE_NAME", serviceName),
		ServiceVersion: StringFromEnv("OTEL_SERVICE_VERSION", "dev"),
		Environment:    StringFromEnvFirstNonEmpty([]string{"OTEL_ENVIRONMENT", "APP_ENV"}, "development"),
		OTLPEndpoint:   StringFromEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:   insecure,
		SampleRate:     sampleRate,
	}, nil
}
