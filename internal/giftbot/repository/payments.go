package repository

import (
	"context"

	"gorm.io/gorm/clause"
)

// PaymentRecord: 성공한 결제 입력
type PaymentRecord struct {
	ChargeID string
	UserID   int64
	Payload  string
	Currency string
	Amount   int
	Attempts int
}

// RecordPayment: 결제를 기록하고 처음 보는 charge_id 일 때만 시도 횟수를 지급한다.
func (r *Repository) RecordPayment(ctx context.Context, p PaymentRecord) (credited bool, attempts int, err error) {
	err = r.Transaction(ctx, func(tx *Repository) error {
		entity := Payment{
			ChargeID: p.ChargeID,
			UserID:   p.UserID,
			Payload:  p.Payload,
			Currency: p.Currency,
			Amount:   p.Amount,
			Attempts: p.Attempts,
		}
		result := tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity)
		if result.Error != nil {
			return dbError("record_payment", result.Error)
		}
		credited = result.RowsAffected == 1

		var addErr error
		if credited {
			attempts, addErr = tx.AddAttempts(ctx, p.UserID, p.Attempts)
		} else {
			attempts, addErr = tx.GetAttempts(ctx, p.UserID)
		}
		return addErr
	})
	if err != nil {
		return false, 0, err
	}
	return credited, attempts, nil
}
