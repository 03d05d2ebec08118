package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{
		"uid-1": {UID: "uid-1", Email: "maria@example.com", IsActive: true, TotalPoints: 300},
	}}
}

func (f *fakeUserRepo) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Ensure(ctx context.Context, uid, email string) (*model.User, error) {
	if u, ok := f.users[uid]; ok {
		return u, nil
	}
	u := &model.User{UID: uid, Email: email, IsActive: true}
	f.users[uid] = u
	return u, nil
}

func (f *fakeUserRepo) TopByPoints(ctx context.Context, limit int) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) CountActive(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeRewardRepo struct {
	rewards     map[uint64]*model.Reward
	userRewards map[uint64]*model.UserReward
	nextID      uint64
	redemptions map[string]int64
	redeemErr   error
	usedOK      bool
}

func newFakeRewardRepo() *fakeRewardRepo {
	remaining := 5
	return &fakeRewardRepo{
		rewards: map[uint64]*model.Reward{
			1: {ID: 1, Name: "Café Gratis", Type: model.RewardTypeFreeItem, PointsRequired: 100, Status: model.RewardStatusActive, UsageLimitPerUser: 1, RemainingQuantity: &remaining},
			2: {ID: 2, Name: "Postre Gratis", Type: model.RewardTypeFreeItem, PointsRequired: 1000, Status: model.RewardStatusActive, UsageLimitPerUser: 1},
		},
		userRewards: make(map[uint64]*model.UserReward),
		nextID:      1,
		redemptions: make(map[string]int64),
		usedOK:      true,
	}
}

func (f *fakeRewardRepo) FindByID(ctx context.Context, id uint64) (*model.Reward, error) {
	r, ok := f.rewards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeRewardRepo) ListActive(ctx context.Context, fl repository.RewardFilter) ([]model.Reward, error) {
	var out []model.Reward
	for _, r := range f.rewards {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRewardRepo) CountRedemptions(ctx context.Context, userUID string, rewardID uint64) (int64, error) {
	return f.redemptions[userUID], nil
}

func (f *fakeRewardRepo) Redeem(ctx context.Context, reward *model.Reward, ur *model.UserReward) error {
	if f.redeemErr != nil {
		return f.redeemErr
	}
	ur.ID = f.nextID
	f.nextID++
	f.userRewards[ur.ID] = ur
	f.redemptions[ur.UserUID]++
	return nil
}

func (f *fakeRewardRepo) FindUserRewardByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.UserReward, error) {
	ur, ok := f.userRewards[id]
	if !ok || ur.UserUID != userUID {
		return nil, gorm.ErrRecordNotFound
	}
	return ur, nil
}

func (f *fakeRewardRepo) ListUserRewards(ctx context.Context, userUID string, limit, offset int) ([]model.UserReward, error) {
	var out []model.UserReward
	for _, ur := range f.userRewards {
		if ur.UserUID == userUID {
			out = append(out, *ur)
		}
	}
	return out, nil
}

func (f *fakeRewardRepo) MarkUsed(ctx context.Context, userRewardID uint64, usedAt time.Time, branchID *uint64) (bool, error) {
	if !f.usedOK {
		return false, nil
	}
	ur, ok := f.userRewards[userRewardID]
	if !ok || ur.Status != model.UserRewardStatusActive {
		return false, nil
	}
	ur.Status = model.UserRewardStatusUsed
	ur.UsedAt = &usedAt
	return true, nil
}

func (f *fakeRewardRepo) Create(ctx context.Context, rw *model.Reward) error {
	f.rewards[rw.ID] = rw
	return nil
}

func newTestRewardService(rr *fakeRewardRepo) RewardService {
	return NewRewardService(rr, newFakeUserRepo(), zap.NewNop())
}

func TestRedeemHappyPath(t *testing.T) {
	rr := newFakeRewardRepo()
	svc := newTestRewardService(rr)

	ur, err := svc.Redeem(context.Background(), "uid-1", 1)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ur.RedemptionCode, "RWD-"))
	require.Len(t, ur.RedemptionCode, 14)
	require.Equal(t, 100, ur.PointsSpent)
	require.Equal(t, model.UserRewardStatusActive, ur.Status)
	require.NotNil(t, ur.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), *ur.ExpiresAt, time.Minute)
	require.NotEmpty(t, ur.QRImageURL)
	require.NotNil(t, ur.Reward)
}

func TestRedeemInsufficientPoints(t *testing.T) {
	rr := newFakeRewardRepo()
	svc := newTestRewardService(rr)

	// reward 2 costs 1000, user holds 300
	_, err := svc.Redeem(context.Background(), "uid-1", 2)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	require.Empty(t, rr.userRewards)
}

func TestRedeemUsageLimit(t *testing.T) {
	rr := newFakeRewardRepo()
	rr.redemptions["uid-1"] = 1
	svc := newTestRewardService(rr)

	_, err := svc.Redeem(context.Background(), "uid-1", 1)
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
}

func TestRedeemUnavailableReward(t *testing.T) {
	rr := newFakeRewardRepo()
	zero := 0
	rr.rewards[1].RemainingQuantity = &zero
	svc := newTestRewardService(rr)

	_, err := svc.Redeem(context.Background(), "uid-1", 1)
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
}

func TestRedeemMapsTransactionErrors(t *testing.T) {
	rr := newFakeRewardRepo()
	rr.redeemErr = repository.ErrInsufficientPoints
	svc := newTestRewardService(rr)

	_, err := svc.Redeem(context.Background(), "uid-1", 1)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	rr.redeemErr = repository.ErrOutOfStock
	_, err = svc.Redeem(context.Background(), "uid-1", 1)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
}

func TestUseRewardTransitions(t *testing.T) {
	rr := newFakeRewardRepo()
	svc := newTestRewardService(rr)

	ur, err := svc.Redeem(context.Background(), "uid-1", 1)
	require.NoError(t, err)

	result, err := svc.Use(context.Background(), "uid-1", ur.ID, nil)
	require.NoError(t, err)
	require.Equal(t, ur.RedemptionCode, result.RedemptionCode)

	// second use fails on the state guard
	_, err = svc.Use(context.Background(), "uid-1", ur.ID, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
}

func TestUseExpiredReward(t *testing.T) {
	rr := newFakeRewardRepo()
	svc := newTestRewardService(rr)

	ur, err := svc.Redeem(context.Background(), "uid-1", 1)
	require.NoError(t, err)
	expired := time.Now().Add(-time.Hour)
	rr.userRewards[ur.ID].ExpiresAt = &expired

	_, err = svc.Use(context.Background(), "uid-1", ur.ID, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
}
