package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

// UserProfile is the user row plus its recycling summary.
type UserProfile struct {
	User  *model.User
	Stats *repository.UserStats
}

type UserService interface {
	// Ensure registers the authenticated identity on first contact.
	Ensure(ctx context.Context, uid, email string) (*model.User, error)
	Profile(ctx context.Context, uid string) (*UserProfile, error)
	Points(ctx context.Context, uid string) (*model.User, error)
	Stats(ctx context.Context, uid string) (*repository.UserStats, error)
}

type userService struct {
	userRepo      repository.UserRepository
	recyclingRepo repository.RecyclingRepository
}

func NewUserService(userRepo repository.UserRepository, recyclingRepo repository.RecyclingRepository) UserService {
	return &userService{userRepo: userRepo, recyclingRepo: recyclingRepo}
}

func (s *userService) Ensure(ctx context.Context, uid, email string) (*model.User, error) {
	return s.userRepo.Ensure(ctx, uid, email)
}

func (s *userService) Profile(ctx context.Context, uid string) (*UserProfile, error) {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	stats, err := s.recyclingRepo.StatsByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: user, Stats: stats}, nil
}

func (s *userService) Points(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Stats(ctx context.Context, uid string) (*repository.UserStats, error) {
	return s.recyclingRepo.StatsByUser(ctx, uid)
}
