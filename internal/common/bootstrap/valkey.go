package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	commonconfig "github.com/park285/gift-grid-bot/internal/common/config"
	"github.com/park285/gift-grid-bot/internal/common/di"
	"github.com/park285/gift-grid-bot/internal/common/valkeyx"
)

// ToValkeyDataConfig: 데이터 용도 Valkey 설정으로 변환한다.
// 락/캐시 값이 매번 바뀌므로 클라이언트 사이드 캐싱은 끈다.
func ToValkeyDataConfig(cfg commonconfig.RedisConfig) valkeyx.Config {
	return valkeyx.Config{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
		DisableCache: true,
	}
}

// NewAndPingDataValkeyClient: Valkey 클라이언트를 생성하고 Ping 으로 연결을 확인한다.
// 실패하면 생성된 클라이언트를 닫고 에러를 반환한다.
func NewAndPingDataValkeyClient(
	ctx context.Context,
	cfg commonconfig.RedisConfig,
	logger *slog.Logger,
) (di.DataValkeyClient, func(), error) {
	client, err := valkeyx.NewClient(ToValkeyDataConfig(cfg))
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("create valkey client failed: %w", err)
	}

	closeFn := func() {
		client.Close()
		logger.Debug("valkey_client_closed")
	}

	if pingErr := valkeyx.Ping(ctx, client); pingErr != nil {
		closeFn()
		return di.DataValkeyClient{}, nil, fmt.Errorf("valkey ping failed: %w", pingErr)
	}
	return di.DataValkeyClient{Client: client}, closeFn, nil
}
