// Package errors: 봇 전반에서 공용으로 사용하는 인프라 에러 타입들을 정의한다.
// 도메인 에러는 각 도메인 패키지(giftbot/errors 등)에서 따로 정의한다.
package errors

import (
	"errors"
	"fmt"
)

// RedisError: Valkey 작업을 수행하는 도중 발생한 에러
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("redis error operation=%s", e.Operation)
	}
	return fmt.Sprintf("redis error operation=%s: %v", e.Operation, e.Err)
}

func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: 데이터베이스 작업을 수행하는 도중 발생한 에러
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("db error operation=%s", e.Operation)
	}
	return fmt.Sprintf("db error operation=%s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// LockError: 사용자 락 획득 실패 등 락 관련 에러
type LockError struct {
	Key         string
	Description string
}

func (e LockError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "failed to acquire lock"
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s key=%s", msg, e.Key)
	}
	return msg
}

// UserBlockedError: 차단(banned)된 사용자의 접근 시 발생하는 에러
type UserBlockedError struct {
	UserID int64
}

func (e UserBlockedError) Error() string { return fmt.Sprintf("user blocked: %d", e.UserID) }

// MalformedInputError: 콜백 데이터 등 입력 형식이 올바르지 않을 때 발생하는 에러
type MalformedInputError struct {
	Message string
}

func (e MalformedInputError) Error() string { return e.Message }

var expectedUserBehaviorTypes = []func() any{
	func() any { return new(MalformedInputError) },
	func() any { return new(UserBlockedError) },
	func() any { return new(LockError) },
}

// IsExpectedUserBehavior: 에러가 사용자의 예상된 행동 패턴(중복 클릭, 잘못된 입력 등)인지 확인한다.
// 로그 레벨을 낮추는 용도이며, 도메인 에러는 각 패키지에서 확장한다.
func IsExpectedUserBehavior(err error) bool {
	if err == nil {
		return false
	}
	for _, targetFn := range expectedUserBehaviorTypes {
		if errors.As(err, targetFn()) {
			return true
		}
	}
	return false
}
