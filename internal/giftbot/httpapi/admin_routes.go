package httpapi

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	commonhttputil "github.com/park285/gift-grid-bot/internal/common/httputil"
	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
	"github.com/park285/gift-grid-bot/internal/giftbot/repository"
)

// Admin API 에러 코드
const (
	adminErrorUnauthorized   = "UNAUTHORIZED"
	adminErrorInvalidRequest = "INVALID_REQUEST"
	adminErrorNotFound       = "NOT_FOUND"
	adminErrorInternalError  = "INTERNAL_ERROR"
)

// AdminDeps: Admin API 핸들러 의존성
type AdminDeps struct {
	Repo   *repository.Repository
	APIKey string
	Logger *slog.Logger
	Now    func() time.Time
}

// SettingRequest: 설정 변경 요청 DTO
type SettingRequest struct {
	Value string `json:"value"`
}

// AttemptsRequest: 시도 횟수 조정 요청 DTO
type AttemptsRequest struct {
	Delta int `json:"delta"`
}

// AttemptsResponse: 조정 후 잔여 시도
type AttemptsResponse struct {
	UserID   int64 `json:"userId"`
	Attempts int   `json:"attempts"`
}

// GiftRequest: 경품 등록 요청 DTO
type GiftRequest struct {
	Title      string  `json:"title"`
	Emoji      string  `json:"emoji"`
	Price      int     `json:"price"`
	DropChance float64 `json:"dropChance"`
}

// SponsorRequest: 스폰서 등록 요청 DTO
type SponsorRequest struct {
	Catalog         string `json:"catalog"` // start, task
	Title           string `json:"title"`
	Kind            string `json:"kind"` // channel, bot, link
	ChannelID       int64  `json:"channelId"`
	ChannelUsername string `json:"channelUsername"`
	InviteLink      string `json:"inviteLink"`
	BonusAttempts   int    `json:"bonusAttempts"`
	SortOrder       int    `json:"sortOrder"`
}

// CreatedResponse: 생성된 레코드 ID
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// RegisterAdminRoutes: Admin API 라우트 등록
func RegisterAdminRoutes(mux *http.ServeMux, deps AdminDeps) {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	handle := func(pattern string, fn func(http.ResponseWriter, *http.Request, AdminDeps)) {
		mux.Handle(pattern, requireAPIKey(deps, func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, deps)
		}))
	}

	handle("GET /admin/stats", handleAdminStats)
	handle("PUT /admin/settings/{key}", handleAdminSetting)
	handle("POST /admin/users/{id}/ban", handleAdminBan)
	handle("DELETE /admin/users/{id}/ban", handleAdminUnban)
	handle("POST /admin/users/{id}/attempts", handleAdminAttempts)
	handle("DELETE /admin/users/{id}/grants/{sponsorId}", handleAdminRevokeGrant)
	handle("POST /admin/gifts", handleAdminCreateGift)
	handle("POST /admin/sponsors", handleAdminCreateSponsor)
}

func requireAPIKey(deps AdminDeps, next http.HandlerFunc) http.Handler {
	expected := []byte(deps.APIKey)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(commonhttputil.APIKeyFromRequest(r))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			deps.Logger.Warn("admin_api_unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
			_ = commonhttputil.WriteErrorJSON(w, http.StatusUnauthorized, adminErrorUnauthorized, "invalid api key")
			return
		}
		next(w, r)
	})
}

func handleAdminStats(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	start := time.Now()
	stats, err := deps.Repo.Stats(r.Context())
	if err != nil {
		writeInternalError(w, deps, "admin_stats_failed", err)
		return
	}
	deps.Logger.Info("admin_stats_served", "duration_ms", time.Since(start).Milliseconds())
	_ = commonhttputil.WriteJSON(w, http.StatusOK, stats)
}

// handleAdminSetting: 알려진 키만 받고 값 형식을 검증한다.
func handleAdminSetting(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	key := r.PathValue("key")
	var req SettingRequest
	if err := commonhttputil.ReadJSON(r, &req, maxBodyBytes); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	value := strings.TrimSpace(req.Value)

	switch key {
	case repository.SettingRevealProbability:
		p, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
			writeBadRequest(w, "probability must be within [0, 1]")
			return
		}
	case repository.SettingAttemptPrice:
		price, err := strconv.Atoi(value)
		if err != nil || price <= 0 {
			writeBadRequest(w, "price must be a positive integer")
			return
		}
	default:
		writeBadRequest(w, "unknown setting key: "+key)
		return
	}

	if err := deps.Repo.SetSetting(r.Context(), key, value); err != nil {
		writeInternalError(w, deps, "admin_setting_failed", err)
		return
	}
	deps.Logger.Info("admin_setting_updated", "key", key, "value", value)
	w.WriteHeader(http.StatusNoContent)
}

func handleAdminBan(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	setBanned(w, r, deps, true)
}

func handleAdminUnban(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	setBanned(w, r, deps, false)
}

func setBanned(w http.ResponseWriter, r *http.Request, deps AdminDeps, banned bool) {
	userID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := deps.Repo.SetBanned(r.Context(), userID, banned); err != nil {
		writeRepoError(w, deps, "admin_ban_failed", err)
		return
	}
	deps.Logger.Info("admin_user_ban_updated", "user_id", userID, "banned", banned)
	w.WriteHeader(http.StatusNoContent)
}

func handleAdminAttempts(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	userID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req AttemptsRequest
	if err := commonhttputil.ReadJSON(r, &req, maxBodyBytes); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Delta == 0 {
		writeBadRequest(w, "delta must not be zero")
		return
	}
	attempts, err := deps.Repo.AddAttempts(r.Context(), userID, req.Delta)
	if err != nil {
		writeRepoError(w, deps, "admin_attempts_failed", err)
		return
	}
	deps.Logger.Info("admin_attempts_adjusted", "user_id", userID, "delta", req.Delta, "attempts", attempts)
	_ = commonhttputil.WriteJSON(w, http.StatusOK, AttemptsResponse{UserID: userID, Attempts: attempts})
}

// handleAdminRevokeGrant: 보너스 지급 기록만 취소한다. 이미 지급된 시도는 그대로 둔다.
func handleAdminRevokeGrant(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	userID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	sponsorID, ok := pathInt64(w, r, "sponsorId")
	if !ok {
		return
	}
	revoked, err := deps.Repo.RevokeGrant(r.Context(), userID, sponsorID, deps.Now())
	if err != nil {
		writeInternalError(w, deps, "admin_revoke_grant_failed", err)
		return
	}
	if !revoked {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusNotFound, adminErrorNotFound, "no active grant")
		return
	}
	deps.Logger.Info("admin_grant_revoked", "user_id", userID, "sponsor_id", sponsorID)
	w.WriteHeader(http.StatusNoContent)
}

func handleAdminCreateGift(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	var req GiftRequest
	if err := commonhttputil.ReadJSON(r, &req, maxBodyBytes); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Price < 0 || req.DropChance <= 0 {
		writeBadRequest(w, "title, non-negative price and positive dropChance are required")
		return
	}
	id, err := deps.Repo.CreateGift(r.Context(), model.Gift{
		Title:      title,
		Emoji:      strings.TrimSpace(req.Emoji),
		Price:      req.Price,
		DropChance: req.DropChance,
		Active:     true,
	})
	if err != nil {
		writeInternalError(w, deps, "admin_create_gift_failed", err)
		return
	}
	deps.Logger.Info("admin_gift_created", "gift_id", id, "title", title)
	_ = commonhttputil.WriteJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func handleAdminCreateSponsor(w http.ResponseWriter, r *http.Request, deps AdminDeps) {
	var req SponsorRequest
	if err := commonhttputil.ReadJSON(r, &req, maxBodyBytes); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var catalog repository.SponsorCatalog
	switch req.Catalog {
	case "start":
		catalog = repository.CatalogStart
	case "task":
		catalog = repository.CatalogTask
		if req.BonusAttempts <= 0 {
			writeBadRequest(w, "task sponsors need positive bonusAttempts")
			return
		}
	default:
		writeBadRequest(w, "catalog must be start or task")
		return
	}

	kind := model.SponsorKind(strings.TrimSpace(req.Kind))
	switch kind {
	case "", model.SponsorKindChannel, model.SponsorKindBot, model.SponsorKindLink:
	default:
		writeBadRequest(w, "unknown sponsor kind: "+req.Kind)
		return
	}

	id, err := deps.Repo.CreateSponsor(r.Context(), catalog, model.Sponsor{
		Title:           strings.TrimSpace(req.Title),
		Kind:            kind,
		ChannelID:       req.ChannelID,
		ChannelUsername: strings.TrimPrefix(strings.TrimSpace(req.ChannelUsername), "@"),
		InviteLink:      strings.TrimSpace(req.InviteLink),
		Active:          true,
		SortOrder:       req.SortOrder,
		BonusAttempts:   req.BonusAttempts,
	})
	if err != nil {
		writeInternalError(w, deps, "admin_create_sponsor_failed", err)
		return
	}
	deps.Logger.Info("admin_sponsor_created", "sponsor_id", id, "catalog", req.Catalog)
	_ = commonhttputil.WriteJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid "+name)
		return 0, false
	}
	return v, true
}

func writeBadRequest(w http.ResponseWriter, message string) {
	_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, adminErrorInvalidRequest, message)
}

func writeRepoError(w http.ResponseWriter, deps AdminDeps, event string, err error) {
	if errors.As(err, new(domainerrors.NotFoundError)) {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusNotFound, adminErrorNotFound, err.Error())
		return
	}
	writeInternalError(w, deps, event, err)
}

func writeInternalError(w http.ResponseWriter, deps AdminDeps, event string, err error) {
	deps.Logger.Error(event, "err", err)
	_ = commonhttputil.WriteErrorJSON(w, http.StatusInternalServerError, adminErrorInternalError, "internal error")
}
