package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"gorm.io/gorm"
)

// ErrInsufficientPoints means the conditional debit matched no row: the
// user's balance dropped below the price between check and commit.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrOutOfStock means the conditional stock decrement matched no row.
var ErrOutOfStock = errors.New("reward out of stock")

type RewardFilter struct {
	Category  string
	MinPoints *int
	MaxPoints *int
	Limit     int
	Offset    int
}

type RewardRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Reward, error)
	ListActive(ctx context.Context, f RewardFilter) ([]model.Reward, error)
	CountRedemptions(ctx context.Context, userUID string, rewardID uint64) (int64, error)

	// Redeem debits the user, decrements bounded stock and creates the
	// UserReward in one transaction. Balance and stock guards are
	// conditional updates so the balance can never go negative.
	Redeem(ctx context.Context, reward *model.Reward, ur *model.UserReward) error

	FindUserRewardByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.UserReward, error)
	ListUserRewards(ctx context.Context, userUID string, limit, offset int) ([]model.UserReward, error)

	// MarkUsed transitions active -> used; false when the row was not
	// active anymore.
	MarkUsed(ctx context.Context, userRewardID uint64, usedAt time.Time, branchID *uint64) (bool, error)

	Create(ctx context.Context, rw *model.Reward) error
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) FindByID(ctx context.Context, id uint64) (*model.Reward, error) {
	var rw model.Reward
	if err := r.db.WithContext(ctx).First(&rw, id).Error; err != nil {
		return nil, err
	}
	return &rw, nil
}

func (r *rewardRepository) ListActive(ctx context.Context, f RewardFilter) ([]model.Reward, error) {
	q := r.db.WithContext(ctx).Where("status = ?", model.RewardStatusActive)
	if f.Category != "" {
		q = q.Where("category LIKE ?", "%"+f.Category+"%")
	}
	if f.MinPoints != nil {
		q = q.Where("points_required >= ?", *f.MinPoints)
	}
	if f.MaxPoints != nil {
		q = q.Where("points_required <= ?", *f.MaxPoints)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	var list []model.Reward
	if err := q.Order("total_redeemed DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *rewardRepository) CountRedemptions(ctx context.Context, userUID string, rewardID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.UserReward{}).
		Where("user_uid = ? AND reward_id = ?", userUID, rewardID).
		Count(&n).Error
	return n, err
}

func (r *rewardRepository) Redeem(ctx context.Context, reward *model.Reward, ur *model.UserReward) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("uid = ? AND total_points >= ?", ur.UserUID, ur.PointsSpent).
			Update("total_points", gorm.Expr("total_points - ?", ur.PointsSpent))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		if reward.RemainingQuantity != nil {
			res = tx.Model(&model.Reward{}).
				Where("id = ? AND remaining_quantity > 0", reward.ID).
				Updates(map[string]interface{}{
					"remaining_quantity": gorm.Expr("remaining_quantity - 1"),
					"total_redeemed":     gorm.Expr("total_redeemed + 1"),
				})
		} else {
			res = tx.Model(&model.Reward{}).
				Where("id = ?", reward.ID).
				Update("total_redeemed", gorm.Expr("total_redeemed + 1"))
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOutOfStock
		}

		return tx.Create(ur).Error
	})
}

func (r *rewardRepository) FindUserRewardByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.UserReward, error) {
	var ur model.UserReward
	if err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("id = ? AND user_uid = ?", id, userUID).
		First(&ur).Error; err != nil {
		return nil, err
	}
	return &ur, nil
}

func (r *rewardRepository) ListUserRewards(ctx context.Context, userUID string, limit, offset int) ([]model.UserReward, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []model.UserReward
	if err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("user_uid = ?", userUID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *rewardRepository) MarkUsed(ctx context.Context, userRewardID uint64, usedAt time.Time, branchID *uint64) (bool, error) {
	updates := map[string]interface{}{
		"status":  model.UserRewardStatusUsed,
		"used_at": usedAt,
	}
	if branchID != nil {
		updates["used_at_branch_id"] = *branchID
	}
	res := r.db.WithContext(ctx).
		Model(&model.UserReward{}).
		Where("id = ? AND status = ?", userRewardID, model.UserRewardStatusActive).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *rewardRepository) Create(ctx context.Context, rw *model.Reward) error {
	return r.db.WithContext(ctx).Create(rw).Error
}
