package errors

import (
	"errors"
	"fmt"

	cerrors "github.com/park285/gift-grid-bot/internal/common/errors"
)

// ErrNoGiftsConfigured: 활성 경품이 하나도 없어 보드에 경품을 배치할 수 없음
var ErrNoGiftsConfigured = errors.New("no gifts configured")

// ErrMessageNotModified: 편집 요청 내용이 기존 메시지와 같음. 성공으로 취급한다.
var ErrMessageNotModified = errors.New("message is not modified")

// NeedAttemptsError 는 시도 횟수가 부족할 때 반환된다.
type NeedAttemptsError struct {
	UserID   int64
	Attempts int
}

func (e NeedAttemptsError) Error() string {
	return fmt.Sprintf("need attempts: user=%d attempts=%d", e.UserID, e.Attempts)
}

// SessionNotFoundError 는 타입이다.
type SessionNotFoundError struct {
	UserID int64
}

func (e SessionNotFoundError) Error() string {
	return fmt.Sprintf("game session not found: user=%d", e.UserID)
}

// SessionFinishedError 는 종료된 세션에 reveal/collect 를 요청했을 때 반환된다.
type SessionFinishedError struct {
	UserID int64
}

func (e SessionFinishedError) Error() string {
	return fmt.Sprintf("game session already finished: user=%d", e.UserID)
}

// InvalidCellError 는 타입이다.
type InvalidCellError struct {
	Index int
}

func (e InvalidCellError) Error() string { return fmt.Sprintf("invalid cell index: %d", e.Index) }

// NoPendingWinsError 는 수령할 당첨이 없을 때 반환된다.
type NoPendingWinsError struct {
	UserID int64
}

func (e NoPendingWinsError) Error() string {
	return fmt.Sprintf("no pending wins: user=%d", e.UserID)
}

// NotFoundError 는 삭제된 스폰서/경품/인벤토리 항목 참조 시 반환된다.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e NotFoundError) Error() string { return fmt.Sprintf("%s not found: %d", e.Entity, e.ID) }

// InvalidStatusTransitionError 는 타입이다.
type InvalidStatusTransitionError struct {
	ItemID int64
	From   string
	To     string
}

func (e InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid inventory status transition: item=%d %s -> %s", e.ItemID, e.From, e.To)
}

// PermissionRevokedError: 사용자가 봇을 차단해 메시지 전송이 불가능함
type PermissionRevokedError struct {
	ChatID int64
	Err    error
}

func (e PermissionRevokedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("permission revoked: chat=%d", e.ChatID)
	}
	return fmt.Sprintf("permission revoked: chat=%d: %v", e.ChatID, e.Err)
}

func (e PermissionRevokedError) Unwrap() error { return e.Err }

// IsPermissionRevoked: 래핑된 에러까지 포함해 PermissionRevokedError 인지 확인한다.
func IsPermissionRevoked(err error) bool {
	return errors.As(err, new(PermissionRevokedError))
}

// IsExpectedUserBehavior: 사용자 행동으로 발생한 에러인지 확인한다. 공통 에러 분류를 포함한다.
func IsExpectedUserBehavior(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.As(err, new(NeedAttemptsError)):
		return true
	case errors.As(err, new(SessionNotFoundError)):
		return true
	case errors.As(err, new(SessionFinishedError)):
		return true
	case errors.As(err, new(InvalidCellError)):
		return true
	case errors.As(err, new(NoPendingWinsError)):
		return true
	case errors.As(err, new(NotFoundError)):
		return true
	case errors.As(err, new(InvalidStatusTransitionError)):
		return true
	case errors.As(err, new(PermissionRevokedError)):
		return true
	default:
		return cerrors.IsExpectedUserBehavior(err)
	}
}
