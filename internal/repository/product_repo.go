package repository

import (
	"context"
	"errors"

	"orderflow/internal/models"

	"gorm.io/gorm"
)

// ProductRepo is a read-only view of the catalog-owned products table.
type ProductRepo interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}
