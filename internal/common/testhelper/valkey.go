package testhelper

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

// NewMiniredisClient: miniredis 인스턴스와 연결된 Valkey 클라이언트를 만든다.
// 둘 다 t.Cleanup 으로 정리된다.
func NewMiniredisClient(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("valkey client create failed: %v", err)
	}
	t.Cleanup(client.Close)

	return client, mr
}
