package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// SponsorCatalog: 스폰서 카탈로그 구분
type SponsorCatalog int

const (
	// CatalogStart: 온보딩 스폰서
	CatalogStart SponsorCatalog = iota
	// CatalogTask: 과제 스폰서
	CatalogTask
)

func startSponsorToModel(s StartSponsor) model.Sponsor {
	return model.Sponsor{
		ID:              s.ID,
		Title:           s.Title,
		Kind:            model.ParseSponsorKind(s.Kind),
		ChannelID:       s.ChannelID,
		ChannelUsername: s.ChannelUsername,
		InviteLink:      s.InviteLink,
		Active:          s.IsActive,
		SortOrder:       s.SortOrder,
	}
}

func taskSponsorToModel(s TaskSponsor) model.Sponsor {
	return model.Sponsor{
		ID:              s.ID,
		Title:           s.Title,
		Kind:            model.ParseSponsorKind(s.Kind),
		ChannelID:       s.ChannelID,
		ChannelUsername: s.ChannelUsername,
		InviteLink:      s.InviteLink,
		Active:          s.IsActive,
		SortOrder:       s.SortOrder,
		BonusAttempts:   s.BonusAttempts,
	}
}

// ActiveStartSponsors: 활성 온보딩 스폰서 (sort_order, id 순)
func (r *Repository) ActiveStartSponsors(ctx context.Context) ([]model.Sponsor, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []StartSponsor
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, dbError("active_start_sponsors", err)
	}
	sponsors := make([]model.Sponsor, 0, len(rows))
	for _, row := range rows {
		sponsors = append(sponsors, startSponsorToModel(row))
	}
	return sponsors, nil
}

// ActiveTaskSponsors: 활성 과제 스폰서 (sort_order, id 순)
func (r *Repository) ActiveTaskSponsors(ctx context.Context) ([]model.Sponsor, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []TaskSponsor
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, dbError("active_task_sponsors", err)
	}
	sponsors := make([]model.Sponsor, 0, len(rows))
	for _, row := range rows {
		sponsors = append(sponsors, taskSponsorToModel(row))
	}
	return sponsors, nil
}

// CreateSponsor: 카탈로그에 스폰서를 추가하고 ID 를 반환한다 (관리자 작업).
func (r *Repository) CreateSponsor(ctx context.Context, catalog SponsorCatalog, s model.Sponsor) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}
	kind := s.Kind
	if kind == "" {
		kind = model.SponsorKindChannel
	}
	db := r.db.WithContext(ctx)
	switch catalog {
	case CatalogTask:
		entity := TaskSponsor{
			Title: s.Title, Kind: string(kind), ChannelID: s.ChannelID,
			ChannelUsername: s.ChannelUsername, InviteLink: s.InviteLink,
			BonusAttempts: s.BonusAttempts, IsActive: s.Active, SortOrder: s.SortOrder,
		}
		if err := db.Create(&entity).Error; err != nil {
			return 0, dbError("create_task_sponsor", err)
		}
		return entity.ID, nil
	default:
		entity := StartSponsor{
			Title: s.Title, Kind: string(kind), ChannelID: s.ChannelID,
			ChannelUsername: s.ChannelUsername, InviteLink: s.InviteLink,
			IsActive: s.Active, SortOrder: s.SortOrder,
		}
		if err := db.Create(&entity).Error; err != nil {
			return 0, dbError("create_start_sponsor", err)
		}
		return entity.ID, nil
	}
}

// IsActiveStartChannel: 활성 온보딩 스폰서 중 해당 채널이 있는지 확인한다.
func (r *Repository) IsActiveStartChannel(ctx context.Context, channelID int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("db is nil")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&StartSponsor{}).
		Where("channel_id = ? AND is_active = ?", channelID, true).
		Count(&count).Error; err != nil {
		return false, dbError("is_active_start_channel", err)
	}
	return count > 0, nil
}

// UnrewardedTaskSponsors: 아직 보너스를 받지 않은 활성 과제 스폰서
func (r *Repository) UnrewardedTaskSponsors(ctx context.Context, userID int64) ([]model.Sponsor, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []TaskSponsor
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.db.Model(&SponsorBonusGrant{}).Select("sponsor_id").Where("user_id = ?", userID)).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError("unrewarded_task_sponsors", err)
	}
	sponsors := make([]model.Sponsor, 0, len(rows))
	for _, row := range rows {
		sponsors = append(sponsors, taskSponsorToModel(row))
	}
	return sponsors, nil
}

// GrantSponsorBonuses: 스폰서별 지급 행을 삽입하고, 새로 삽입된 행의 보너스 합만큼 시도 횟수를 더한다.
// (user_id, sponsor_id) 유니크 제약으로 재실행 시 중복 지급되지 않는다.
func (r *Repository) GrantSponsorBonuses(ctx context.Context, userID int64, sponsors []model.Sponsor, now time.Time) (int, error) {
	total := 0
	err := r.Transaction(ctx, func(tx *Repository) error {
		for _, sponsor := range sponsors {
			grant := SponsorBonusGrant{
				UserID:          userID,
				SponsorID:       sponsor.ID,
				GrantedAttempts: sponsor.BonusAttempts,
				GrantedAt:       now,
			}
			result := tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
			if result.Error != nil {
				return dbError("insert_sponsor_bonus_grant", result.Error)
			}
			if result.RowsAffected == 1 {
				total += sponsor.BonusAttempts
			}
		}
		if total > 0 {
			if _, err := tx.AddAttempts(ctx, userID, total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RevokeGrant: 지급 기록을 취소 표시한다. 시도 횟수는 회수하지 않는다 (관리자 전용).
func (r *Repository) RevokeGrant(ctx context.Context, userID, sponsorID int64, now time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("db is nil")
	}
	result := r.db.WithContext(ctx).Model(&SponsorBonusGrant{}).
		Where("user_id = ? AND sponsor_id = ? AND is_revoked = ?", userID, sponsorID, false).
		Updates(map[string]any{"is_revoked": true, "revoked_at": now})
	if result.Error != nil {
		return false, dbError("revoke_grant", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// UpsertJoinRequest: 가입 요청 시각을 기록/갱신한다.
func (r *Repository) UpsertJoinRequest(ctx context.Context, userID, channelID int64, at time.Time) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	entity := JoinRequest{UserID: userID, ChannelID: channelID, RequestedAt: at}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"requested_at"}),
	}).Create(&entity).Error; err != nil {
		return dbError("upsert_join_request", err)
	}
	return nil
}

// GetJoinRequest: 가입 요청 기록. 없으면 found=false.
func (r *Repository) GetJoinRequest(ctx context.Context, userID, channelID int64) (model.JoinRequest, bool, error) {
	if r == nil || r.db == nil {
		return model.JoinRequest{}, false, fmt.Errorf("db is nil")
	}
	var entity JoinRequest
	if err := r.db.WithContext(ctx).Where("user_id = ? AND channel_id = ?", userID, channelID).
		Take(&entity).Error; err != nil {
		if isNotFound(err) {
			return model.JoinRequest{}, false, nil
		}
		return model.JoinRequest{}, false, dbError("get_join_request", err)
	}
	return model.JoinRequest{UserID: entity.UserID, ChannelID: entity.ChannelID, RequestedAt: entity.RequestedAt}, true, nil
}
