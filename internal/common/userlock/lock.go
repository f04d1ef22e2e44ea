// Package userlock 는 사용자 단위 배타 락(Valkey SET NX PX + 토큰)을 제공한다.
// 같은 사용자의 콜백이 동시에 들어와도 시도 횟수/세션 read-modify-write 가 겹치지 않게 한다.
package userlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
	"github.com/park285/gift-grid-bot/internal/common/valkeyx"
)

const (
	acquireMaxAttempts  = 3
	acquireInitialDelay = 50 * time.Millisecond
	acquireMaxDelay     = 500 * time.Millisecond
	acquireBackoff      = 2
)

// ErrBusy: 다른 처리가 락을 보유 중이어서 제한 시간 내 획득하지 못함
var ErrBusy = errors.New("user lock busy")

// 토큰이 일치할 때만 삭제한다.
var releaseScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// KeyFunc: 사용자 ID 로 락 키를 만든다.
type KeyFunc func(userID int64) string

// Locker: 사용자 락 매니저
type Locker struct {
	client  valkey.Client
	logger  *slog.Logger
	keyFunc KeyFunc
	ttl     time.Duration
}

// New: Locker 를 생성한다. ttl 은 보유자가 비정상 종료했을 때의 자동 해제 시간이다.
func New(client valkey.Client, logger *slog.Logger, keyFunc KeyFunc, ttl time.Duration) *Locker {
	if logger == nil {
		logger = slog.Default()
	}
	if keyFunc == nil {
		keyFunc = func(userID int64) string { return valkeyx.BuildKey("userlock", userID) }
	}
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Locker{client: client, logger: logger, keyFunc: keyFunc, ttl: ttl}
}

// WithLock: 락을 획득한 상태로 fn 을 실행하고 끝나면 해제한다.
// fn 의 ctx 는 락 만료 전에 끝나도록 holdBudget 으로 제한된다.
// 재시도 후에도 획득하지 못하면 LockError(ErrBusy 래핑)를 반환한다.
func (l *Locker) WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	key := l.keyFunc(userID)

	token, err := newToken()
	if err != nil {
		return fmt.Errorf("generate lock token failed: %w", err)
	}

	acquired, err := l.acquireWithRetry(ctx, key, token)
	if err != nil {
		return valkeyx.WrapRedisError("user_lock_acquire", err)
	}
	if !acquired {
		return lockBusyError{LockError: cerrors.LockError{Key: key, Description: "user lock busy"}}
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if relErr := l.release(releaseCtx, key, token); relErr != nil {
			l.logger.Warn("user_lock_release_failed", "user_id", userID, "err", relErr)
		}
	}()

	fnCtx, cancel := context.WithTimeout(ctx, l.holdBudget())
	defer cancel()
	return fn(fnCtx)
}

// holdBudget: 락 TTL 의 80%. 남은 구간은 해제 여유분이다.
func (l *Locker) holdBudget() time.Duration {
	return l.ttl - l.ttl/5
}

func (l *Locker) acquireWithRetry(ctx context.Context, key, token string) (bool, error) {
	delay := acquireInitialDelay
	for attempt := 1; attempt <= acquireMaxAttempts; attempt++ {
		ok, err := l.tryAcquire(ctx, key, token)
		if err != nil || ok {
			return ok, err
		}
		if attempt == acquireMaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return false, fmt.Errorf("acquire user lock cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay = min(delay*acquireBackoff, acquireMaxDelay)
	}
	return false, nil
}

func (l *Locker) tryAcquire(ctx context.Context, key, token string) (bool, error) {
	cmd := l.client.B().Set().Key(key).Value(token).Nx().Px(l.ttl).Build()
	if err := l.client.Do(ctx, cmd).Error(); err != nil {
		if valkeyx.IsNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("set user lock failed: %w", err)
	}
	return true, nil
}

func (l *Locker) release(ctx context.Context, key, token string) error {
	if err := releaseScript.Exec(ctx, l.client, []string{key}, []string{token}).Error(); err != nil {
		return fmt.Errorf("release user lock failed: %w", err)
	}
	return nil
}

// IsHeld: 현재 락이 존재하는지 확인한다. (테스트/진단용)
func (l *Locker) IsHeld(ctx context.Context, userID int64) (bool, error) {
	n, err := l.client.Do(ctx, l.client.B().Exists().Key(l.keyFunc(userID)).Build()).AsInt64()
	if err != nil {
		return false, valkeyx.WrapRedisError("user_lock_exists", err)
	}
	return n > 0, nil
}

type lockBusyError struct {
	cerrors.LockError
}

func (e lockBusyError) Unwrap() []error { return []error{e.LockError, ErrBusy} }

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
