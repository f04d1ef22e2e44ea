// Package redis 는 giftbot 의 Valkey 기반 저장소(구독 확인 캐시, 락 키)를 제공한다.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/gift-grid-bot/internal/common/valkeyx"
	gconfig "github.com/park285/gift-grid-bot/internal/giftbot/config"
)

// membershipKey 는 구독 확인 캐시 키를 생성한다.
// 형식: giftbot:membership:{userID}:{channelID}
func membershipKey(userID, channelID int64) string {
	return valkeyx.BuildKey2(gconfig.RedisKeyMembership, userID, channelID)
}

// UserLockKey 는 사용자 처리 락 키를 생성한다.
// 형식: giftbot:lock:user:{userID}
func UserLockKey(userID int64) string {
	return valkeyx.BuildKey(gconfig.RedisKeyUserLock, userID)
}

type membershipEntry struct {
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checkedAt"`
}

// MembershipCache: 구독 확인 성공 결과만 짧게 캐시한다.
// 실패는 캐시하지 않으므로 방금 구독한 사용자가 재확인에서 막히지 않는다.
type MembershipCache struct {
	client valkey.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewMembershipCache: ttl <= 0 이면 캐시를 사용하지 않는다.
func NewMembershipCache(client valkey.Client, logger *slog.Logger, ttl time.Duration) *MembershipCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &MembershipCache{client: client, logger: logger, ttl: ttl}
}

func (c *MembershipCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get: 캐시된 멤버십 상태. 없으면 ok=false.
func (c *MembershipCache) Get(ctx context.Context, userID, channelID int64) (string, bool, error) {
	if !c.enabled() {
		return "", false, nil
	}
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(membershipKey(userID, channelID)).Build()).AsBytes()
	if err != nil {
		if valkeyx.IsNil(err) {
			return "", false, nil
		}
		return "", false, valkeyx.WrapRedisError("membership_get", err)
	}
	var entry membershipEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("membership_cache_corrupt", "user_id", userID, "channel_id", channelID, "err", err)
		return "", false, nil
	}
	return entry.Status, true, nil
}

// PutSubscribed: 구독 확인 성공 상태를 ttl 동안 저장한다.
func (c *MembershipCache) PutSubscribed(ctx context.Context, userID, channelID int64, status string, now time.Time) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(membershipEntry{Status: status, CheckedAt: now})
	if err != nil {
		return fmt.Errorf("marshal membership entry failed: %w", err)
	}
	cmd := c.client.B().Set().Key(membershipKey(userID, channelID)).Value(string(raw)).Px(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return valkeyx.WrapRedisError("membership_put", err)
	}
	return nil
}

// Invalidate: 캐시를 지운다. 가입 요청/탈퇴 이벤트 등으로 상태가 바뀌었을 때 사용한다.
func (c *MembershipCache) Invalidate(ctx context.Context, userID, channelID int64) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Do(ctx, c.client.B().Del().Key(membershipKey(userID, channelID)).Build()).Error(); err != nil {
		return valkeyx.WrapRedisError("membership_invalidate", err)
	}
	return nil
}
