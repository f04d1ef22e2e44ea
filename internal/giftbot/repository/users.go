package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "github.com/park285/gift-grid-bot/internal/giftbot/errors"
	"github.com/park285/gift-grid-bot/internal/giftbot/model"
)

// UserProfile: upsert 입력
type UserProfile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func toUserModel(u User) model.User {
	return model.User{
		ID:                   u.ID,
		Username:             u.Username,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Attempts:             u.Attempts,
		Banned:               u.IsBanned,
		StartMessageID:       u.StartMessageID,
		OnboardingRewardedAt: u.OnboardingRewardedAt,
		CreatedAt:            u.CreatedAt,
	}
}

// UpsertUser: 사용자를 생성하거나 프로필을 갱신한다. 새로 생성됐으면 created=true.
func (r *Repository) UpsertUser(ctx context.Context, p UserProfile) (user model.User, created bool, err error) {
	if r == nil || r.db == nil {
		return model.User{}, false, fmt.Errorf("db is nil")
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing User
		findErr := tx.Where("id = ?", p.ID).Take(&existing).Error
		switch {
		case findErr == nil:
			updateErr := tx.Model(&User{}).Where("id = ?", p.ID).Updates(map[string]any{
				"username":   p.Username,
				"first_name": p.FirstName,
				"last_name":  p.LastName,
			}).Error
			if updateErr != nil {
				return updateErr
			}
			existing.Username, existing.FirstName, existing.LastName = p.Username, p.FirstName, p.LastName
			user = toUserModel(existing)
			return nil
		case isNotFound(findErr):
			entity := User{ID: p.ID, Username: p.Username, FirstName: p.FirstName, LastName: p.LastName}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity)
			if result.Error != nil {
				return result.Error
			}
			created = result.RowsAffected == 1
			if reloadErr := tx.Where("id = ?", p.ID).Take(&entity).Error; reloadErr != nil {
				return reloadErr
			}
			user = toUserModel(entity)
			return nil
		default:
			return findErr
		}
	})
	if err != nil {
		return model.User{}, false, dbError("upsert_user", err)
	}
	return user, created, nil
}

// GetUser: 사용자를 조회한다. 없으면 found=false.
func (r *Repository) GetUser(ctx context.Context, userID int64) (model.User, bool, error) {
	if r == nil || r.db == nil {
		return model.User{}, false, fmt.Errorf("db is nil")
	}
	var entity User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&entity).Error; err != nil {
		if isNotFound(err) {
			return model.User{}, false, nil
		}
		return model.User{}, false, dbError("get_user", err)
	}
	return toUserModel(entity), true, nil
}

// GetAttempts: 현재 시도 횟수. 사용자가 없으면 0.
func (r *Repository) GetAttempts(ctx context.Context, userID int64) (int, error) {
	user, _, err := r.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Attempts, nil
}

// IsBanned: 차단 여부
func (r *Repository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	user, found, err := r.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return found && user.Banned, nil
}

// SetBanned: 차단 플래그를 설정한다 (관리자 작업).
func (r *Repository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("is_banned", banned)
	if result.Error != nil {
		return dbError("set_banned", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.NotFoundError{Entity: "user", ID: userID}
	}
	return nil
}

// AddAttempts: 시도 횟수를 delta 만큼 변경한다. 결과는 0 아래로 내려가지 않는다.
func (r *Repository) AddAttempts(ctx context.Context, userID int64, delta int) (int, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}
	db := r.db.WithContext(ctx)
	result := db.Model(&User{}).Where("id = ?", userID).
		Update("attempts", gorm.Expr("CASE WHEN attempts + ? < 0 THEN 0 ELSE attempts + ? END", delta, delta))
	if result.Error != nil {
		return 0, dbError("add_attempts", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, domainerrors.NotFoundError{Entity: "user", ID: userID}
	}
	var attempts int
	if err := db.Model(&User{}).Where("id = ?", userID).Pluck("attempts", &attempts).Error; err != nil {
		return 0, dbError("add_attempts_reload", err)
	}
	return attempts, nil
}

// DebitAttempt: 시도 횟수가 1 이상일 때만 1 차감한다. 차감했으면 true 와 남은 횟수.
func (r *Repository) DebitAttempt(ctx context.Context, userID int64) (bool, int, error) {
	if r == nil || r.db == nil {
		return false, 0, fmt.Errorf("db is nil")
	}
	db := r.db.WithContext(ctx)
	result := db.Model(&User{}).Where("id = ? AND attempts >= 1", userID).
		Update("attempts", gorm.Expr("attempts - 1"))
	if result.Error != nil {
		return false, 0, dbError("debit_attempt", result.Error)
	}
	var remaining int
	if err := db.Model(&User{}).Where("id = ?", userID).Pluck("attempts", &remaining).Error; err != nil {
		return false, 0, dbError("debit_attempt_reload", err)
	}
	return result.RowsAffected == 1, remaining, nil
}

// SetStartMessageID: 최초 /start 메시지 ID 를 한 번만 기록한다. 기록했으면 true.
func (r *Repository) SetStartMessageID(ctx context.Context, userID int64, messageID int) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("db is nil")
	}
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND start_message_id IS NULL", userID).
		Update("start_message_id", messageID)
	if result.Error != nil {
		return false, dbError("set_start_message_id", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ClaimOnboardingReward: 온보딩 보너스를 사용자당 한 번만 지급한다.
// 지급했으면 true 와 갱신된 시도 횟수를 반환한다.
func (r *Repository) ClaimOnboardingReward(ctx context.Context, userID int64, bonus int, now time.Time) (bool, int, error) {
	var (
		claimed  bool
		attempts int
	)
	err := r.Transaction(ctx, func(tx *Repository) error {
		result := tx.db.Model(&User{}).
			Where("id = ? AND onboarding_rewarded_at IS NULL", userID).
			Update("onboarding_rewarded_at", now)
		if result.Error != nil {
			return dbError("claim_onboarding_reward", result.Error)
		}
		claimed = result.RowsAffected == 1

		var err error
		if claimed && bonus > 0 {
			attempts, err = tx.AddAttempts(ctx, userID, bonus)
		} else {
			attempts, err = tx.GetAttempts(ctx, userID)
		}
		return err
	})
	if err != nil {
		return false, 0, err
	}
	return claimed, attempts, nil
}
