// Package httpapi 는 운영용 HTTP 엔드포인트(헬스체크, 메트릭, 관리자 API)를 등록한다.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/park285/gift-grid-bot/internal/common/health"
	commonhttputil "github.com/park285/gift-grid-bot/internal/common/httputil"
)

const maxBodyBytes = 1 << 16

// Register: HTTP API 라우트 등록. 관리자 API 는 API 키가 설정된 경우에만 등록한다.
func Register(mux *http.ServeMux, admin AdminDeps, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	// GET /health - 헬스체크
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_ = commonhttputil.WriteJSON(w, http.StatusOK, health.Get())
	})

	// GET /metrics - Prometheus
	mux.Handle("GET /metrics", promhttp.Handler())

	if admin.APIKey == "" {
		logger.Warn("admin_api_disabled", "reason", "ADMIN_API_KEY empty")
	} else {
		if admin.Logger == nil {
			admin.Logger = logger
		}
		RegisterAdminRoutes(mux, admin)
	}

	logger.Info("giftbot_http_api_registered", "admin_api", admin.APIKey != "")
}
