package telemetry

import (
	"context"
	"testing"

	commonconfig "github.com/park285/gift-grid-bot/internal/common/config"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), commonconfig.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsEnabled() {
		t.Fatal("expected disabled provider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown of noop provider failed: %v", err)
	}
}

func TestRootSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.5, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := rootSampler(tt.rate).Description(); got != tt.want {
			t.Errorf("rate %v: expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}
