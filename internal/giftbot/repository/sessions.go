package repository

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// boardDocument: game_sessions.board 에 저장되는 v1 문서
type boardDocument struct {
	Board       model.Board        `json:"board"`
	PendingWins []model.PendingWin `json:"pendingWins"`
}

// GetSession: 사용자 세션을 조회한다.
// 행이 없거나, 스키마 버전을 모르거나, 문서가 깨졌으면 세션이 없는 것으로 본다.
func (r *Repository) GetSession(ctx context.Context, userID int64) (*model.GameSession, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var entity GameSession
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&entity).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, dbError("get_session", err)
	}

	if entity.SchemaVersion != model.SessionSchemaVersion {
		slog.Warn("game_session_unknown_schema", "user_id", userID, "schema_version", entity.SchemaVersion)
		return nil, nil
	}
	var doc boardDocument
	if err := json.Unmarshal(entity.Board, &doc); err != nil || !doc.Board.Valid() {
		slog.Warn("game_session_corrupt", "user_id", userID, "err", err)
		return nil, nil
	}

	return &model.GameSession{
		UserID:        entity.UserID,
		SchemaVersion: entity.SchemaVersion,
		Board:         doc.Board,
		PendingWins:   doc.PendingWins,
		Finished:      entity.Finished,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}, nil
}

// SaveSession: 세션 행을 덮어쓴다.
func (r *Repository) SaveSession(ctx context.Context, session *model.GameSession) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if session == nil {
		return fmt.Errorf("session is nil")
	}

	pending := session.PendingWins
	if pending == nil {
		pending = []model.PendingWin{}
	}
	raw, err := json.Marshal(boardDocument{Board: session.Board, PendingWins: pending})
	if err != nil {
		return fmt.Errorf("marshal session board failed: %w", err)
	}

	entity := GameSession{
		UserID:        session.UserID,
		SchemaVersion: model.SessionSchemaVersion,
		Board:         datatypes.JSON(raw),
		Finished:      session.Finished,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"schema_version", "board", "finished", "created_at", "updated_at",
		}),
	}).Create(&entity).Error; err != nil {
		return dbError("save_session", err)
	}
	return nil
}
