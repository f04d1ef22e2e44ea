// Package valkeyx 는 Valkey 클라이언트 공통 유틸리티를 제공한다.
package valkeyx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
)

// Config: Valkey 클라이언트 연결 설정.
type Config struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// DisableCache: 클라이언트 사이드 캐싱 비활성화 여부. miniredis 사용 시 true.
	DisableCache bool
}

// NewClient: 설정으로 Valkey 클라이언트를 생성한다.
func NewClient(cfg Config) (valkey.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("valkey addr is empty")
	}

	opts := valkey.ClientOption{
		InitAddress:       []string{addr},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		DisableCache:      cfg.DisableCache,
		ConnWriteTimeout:  cfg.WriteTimeout,
		ForceSingleClient: true,
	}
	if cfg.DialTimeout > 0 {
		opts.Dialer.Timeout = cfg.DialTimeout
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client failed: %w", err)
	}
	return client, nil
}

// Ping: PING 으로 연결 상태를 점검한다.
func Ping(ctx context.Context, client valkey.Client) error {
	if client == nil {
		return errors.New("valkey client is nil")
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

// IsNil: 래핑된 에러까지 포함해 Valkey nil(키 없음) 응답인지 확인한다.
func IsNil(err error) bool {
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		if valkey.IsValkeyNil(unwrapped) {
			return true
		}
	}
	return false
}

// BuildKey: {prefix}:{id} 형식의 키를 만든다.
func BuildKey(prefix string, id any) string {
	return fmt.Sprintf("%s:%s", prefix, strings.TrimSpace(fmt.Sprint(id)))
}

// BuildKey2: {prefix}:{id1}:{id2} 형식의 키를 만든다.
func BuildKey2(prefix string, id1, id2 any) string {
	return fmt.Sprintf("%s:%s:%s", prefix, strings.TrimSpace(fmt.Sprint(id1)), strings.TrimSpace(fmt.Sprint(id2)))
}

// WrapRedisError: Valkey 에러를 공통 타입으로 감싼다.
func WrapRedisError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.RedisError{Operation: operation, Err: err}
}
