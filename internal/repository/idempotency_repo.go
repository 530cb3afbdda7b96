package repository

import (
	"context"
	"errors"

	"orderflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdempotencyRepo interface {
	// Reserve atomically checks-and-reserves a token. A fresh token is
	// inserted as PENDING and (nil, true) is returned. If the token already
	// exists the row is loaded under FOR UPDATE, so concurrent retries of the
	// same attempt serialize on it, and (row, false) is returned.
	//
	// Reserve must run inside WithTx: the unique constraint makes two
	// concurrent first submissions resolve to a single inserted row, and a
	// rollback releases the reservation so a crashed attempt admits exactly
	// one retry.
	Reserve(ctx context.Context, token string) (existing *models.IdempotencyKey, fresh bool, err error)

	// Complete marks the reservation handled and records the resulting order.
	Complete(ctx context.Context, token string, orderID uuid.UUID) error

	Get(ctx context.Context, token string) (*models.IdempotencyKey, error)
}

type idempotencyRepo struct{ db *gorm.DB }

func NewIdempotencyRepo(db *gorm.DB) IdempotencyRepo { return &idempotencyRepo{db: db} }

func (r *idempotencyRepo) Reserve(ctx context.Context, token string) (*models.IdempotencyKey, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoNothing: true,
		}).
		Create(&models.IdempotencyKey{Token: token, Status: models.IdempotencyStatusPending})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return nil, true, nil
	}

	var key models.IdempotencyKey
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&key, "token = ?", token).Error
	if err != nil {
		return nil, false, err
	}
	return &key, false, nil
}

func (r *idempotencyRepo) Complete(ctx context.Context, token string, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.IdempotencyKey{}).
		Where("token = ?", token).
		Updates(map[string]any{
			"status":   models.IdempotencyStatusCompleted,
			"order_id": orderID,
		}).Error
}

func (r *idempotencyRepo) Get(ctx context.Context, token string) (*models.IdempotencyKey, error) {
	var key models.IdempotencyKey
	err := r.db.WithContext(ctx).First(&key, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}
