package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/qr"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

// redemptionValidity is how long a redeemed reward stays usable.
const redemptionValidity = 30 * 24 * time.Hour

type UseRewardResult struct {
	RedemptionCode string
	UsedAt         time.Time
}

type RewardService interface {
	Catalog(ctx context.Context, f repository.RewardFilter) ([]model.Reward, error)
	Get(ctx context.Context, rewardID uint64) (*model.Reward, error)
	Redeem(ctx context.Context, userUID string, rewardID uint64) (*model.UserReward, error)
	MyRewards(ctx context.Context, userUID string, limit, offset int) ([]model.UserReward, error)
	GetMyReward(ctx context.Context, userUID string, userRewardID uint64) (*model.UserReward, error)
	Use(ctx context.Context, userUID string, userRewardID uint64, branchID *uint64) (*UseRewardResult, error)
}

type rewardService struct {
	rewardRepo repository.RewardRepository
	userRepo   repository.UserRepository
	logger     *zap.Logger
}

func NewRewardService(rewardRepo repository.RewardRepository, userRepo repository.UserRepository, logger *zap.Logger) RewardService {
	return &rewardService{rewardRepo: rewardRepo, userRepo: userRepo, logger: logger}
}

func (s *rewardService) Catalog(ctx context.Context, f repository.RewardFilter) ([]model.Reward, error) {
	return s.rewardRepo.ListActive(ctx, f)
}

func (s *rewardService) Get(ctx context.Context, rewardID uint64) (*model.Reward, error) {
	reward, err := s.rewardRepo.FindByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Reward not found")
		}
		return nil, err
	}
	return reward, nil
}

// Redeem exchanges points for a reward. The debit, the stock decrement
// and the redemption row commit in one transaction; the pre-checks here
// only produce friendlier errors for the common failures.
func (s *rewardService) Redeem(ctx context.Context, userUID string, rewardID uint64) (*model.UserReward, error) {
	reward, err := s.rewardRepo.FindByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Reward not found")
		}
		return nil, err
	}
	if !reward.IsAvailable() {
		return nil, apperr.BusinessRule("Reward is not available")
	}

	user, err := s.userRepo.FindByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	if user.TotalPoints < reward.PointsRequired {
		return nil, apperr.Validation("Insufficient points to redeem this reward")
	}

	redemptions, err := s.rewardRepo.CountRedemptions(ctx, userUID, reward.ID)
	if err != nil {
		return nil, err
	}
	if redemptions >= int64(reward.UsageLimitPerUser) {
		return nil, apperr.BusinessRule("You have reached the maximum redemptions for this reward")
	}

	expiresAt := time.Now().Add(redemptionValidity)
	userReward := &model.UserReward{
		UserUID:        userUID,
		RewardID:       reward.ID,
		RedemptionCode: newCode("RWD", 10),
		PointsSpent:    reward.PointsRequired,
		Status:         model.UserRewardStatusActive,
		ExpiresAt:      &expiresAt,
	}

	imageURL, err := qr.EncodeRedemption(qr.RedemptionPayload{
		RedemptionCode: userReward.RedemptionCode,
		RewardID:       reward.ID,
		RewardName:     reward.Name,
		UserUID:        userUID,
		ExpiresAt:      expiresAt.Format(time.RFC3339),
	})
	if err == nil {
		userReward.QRImageURL = imageURL
	}

	if err := s.rewardRepo.Redeem(ctx, reward, userReward); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientPoints):
			return nil, apperr.Validation("Insufficient points to redeem this reward")
		case errors.Is(err, repository.ErrOutOfStock):
			return nil, apperr.BusinessRule("Reward is not available")
		}
		return nil, err
	}

	s.logger.Info("reward redeemed",
		zap.String("redemption_code", userReward.RedemptionCode),
		zap.String("user_uid", userUID),
		zap.String("reward", reward.Name),
		zap.Int("points_spent", userReward.PointsSpent),
	)

	userReward.Reward = reward
	return userReward, nil
}

func (s *rewardService) MyRewards(ctx context.Context, userUID string, limit, offset int) ([]model.UserReward, error) {
	return s.rewardRepo.ListUserRewards(ctx, userUID, limit, offset)
}

func (s *rewardService) GetMyReward(ctx context.Context, userUID string, userRewardID uint64) (*model.UserReward, error) {
	ur, err := s.rewardRepo.FindUserRewardByIDAndUser(ctx, userRewardID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User reward not found")
		}
		return nil, err
	}
	return ur, nil
}

// Use marks a redemption as spent at a branch counter. The active ->
// used edge is a conditional update so double scans fail on the second.
func (s *rewardService) Use(ctx context.Context, userUID string, userRewardID uint64, branchID *uint64) (*UseRewardResult, error) {
	ur, err := s.rewardRepo.FindUserRewardByIDAndUser(ctx, userRewardID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User reward not found")
		}
		return nil, err
	}

	now := time.Now()
	if !ur.IsValid(now) {
		return nil, apperr.BusinessRule("Reward is not valid or has expired")
	}

	ok, err := s.rewardRepo.MarkUsed(ctx, ur.ID, now, branchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.BusinessRule("Reward has already been used or is not active")
	}

	s.logger.Info("reward used",
		zap.String("redemption_code", ur.RedemptionCode),
		zap.String("user_uid", userUID),
	)

	return &UseRewardResult{RedemptionCode: ur.RedemptionCode, UsedAt: now}, nil
}
