package bootstrap

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// OTelHandler: slog.Handler 를 감싸 현재 span 의 trace_id/span_id 를 로그에 추가합니다.
type OTelHandler struct {
	inner slog.Handler
}

// NewOTelHandler: OTel 상관관계가 추가된 slog.Handler 를 생성합니다.
func NewOTelHandler(inner slog.Handler) *OTelHandler {
	return &OTelHandler{inner: inner}
}

// Enabled: 로그 레벨 활성화 여부를 확인합니다.
func (h *OTelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle: 유효한 span 이 있으면 trace_id/span_id 를 붙여 내부 핸들러로 전달합니다.
func (h *OTelHandler) Handle(ctx context.Context, record slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	//nolint:wrapcheck // slog.Handler interface implementation
	return h.inner.Handle(ctx, record)
}

func (h *OTelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &OTelHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *OTelHandler) WithGroup(name string) slog.Handler {
	return &OTelHandler{inner: h.inner.WithGroup(name)}
}
