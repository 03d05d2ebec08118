package repository

import (
	"context"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"gorm.io/gorm"
)

type WasteTypeRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.WasteType, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.WasteType, error)
	ListActive(ctx context.Context) ([]model.WasteType, error)
	Create(ctx context.Context, wt *model.WasteType) error
}

type wasteTypeRepository struct {
	db *gorm.DB
}

func NewWasteTypeRepository(db *gorm.DB) WasteTypeRepository {
	return &wasteTypeRepository{db: db}
}

func (r *wasteTypeRepository) FindByID(ctx context.Context, id uint64) (*model.WasteType, error) {
	var wt model.WasteType
	if err := r.db.WithContext(ctx).First(&wt, id).Error; err != nil {
		return nil, err
	}
	return &wt, nil
}

func (r *wasteTypeRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.WasteType, error) {
	var list []model.WasteType
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *wasteTypeRepository) ListActive(ctx context.Context) ([]model.WasteType, error) {
	var list []model.WasteType
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category, name").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *wasteTypeRepository) Create(ctx context.Context, wt *model.WasteType) error {
	return r.db.WithContext(ctx).Create(wt).Error
}
