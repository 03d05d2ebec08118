package repository

import (
	"context"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"gorm.io/gorm"
)

type BranchRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Branch, error)
	ListActive(ctx context.Context) ([]model.Branch, error)
	TopByRecycledItems(ctx context.Context, limit int) ([]model.Branch, error)
	CountActive(ctx context.Context) (int64, error)
	Create(ctx context.Context, b *model.Branch) error
}

type branchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) FindByID(ctx context.Context, id uint64) (*model.Branch, error) {
	var b model.Branch
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *branchRepository) ListActive(ctx context.Context) ([]model.Branch, error) {
	var list []model.Branch
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *branchRepository) TopByRecycledItems(ctx context.Context, limit int) ([]model.Branch, error) {
	var list []model.Branch
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("total_recycled_items DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *branchRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Branch{}).
		Where("is_active = ?", true).
		Count(&n).Error
	return n, err
}

func (r *branchRepository) Create(ctx context.Context, b *model.Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}
