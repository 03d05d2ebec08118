package repository

import (
	"context"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	// Create persists the purchase and its items as one unit.
	Create(ctx context.Context, p *model.Purchase) error
	// AttachQR stores the issued QR payload; called once per purchase.
	AttachQR(ctx context.Context, id uint64, data, imageURL string) error
	FindByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.Purchase, error)
	ListByUser(ctx context.Context, userUID string, limit, offset int) ([]model.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepository) AttachQR(ctx context.Context, id uint64, data, imageURL string) error {
	return r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("id = ? AND (qr_code_data = '' OR qr_code_data IS NULL)", id).
		Updates(map[string]interface{}{
			"qr_code_data": data,
			"qr_code_url":  imageURL,
		}).Error
}

func (r *purchaseRepository) FindByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.Purchase, error) {
	var p model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.WasteType").
		Where("id = ? AND user_uid = ?", id, userUID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]model.Purchase, error) {
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_uid = ?", userUID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
