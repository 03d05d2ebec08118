package repository

import (
	"context"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	Ensure(ctx context.Context, uid, email string) (*model.User, error)
	TopByPoints(ctx context.Context, limit int) ([]model.User, error)
	CountActive(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Ensure creates the row on first sight of a UID and is a no-op after.
func (r *userRepository) Ensure(ctx context.Context, uid, email string) (*model.User, error) {
	u := model.User{UID: uid, Email: email, IsActive: true}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&u).Error; err != nil {
		return nil, err
	}
	return r.FindByUID(ctx, uid)
}

func (r *userRepository) TopByPoints(ctx context.Context, limit int) ([]model.User, error) {
	var list []model.User
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("total_points DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_active = ?", true).
		Count(&n).Error
	return n, err
}
