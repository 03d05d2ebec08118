package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

type BranchService interface {
	List(ctx context.Context) ([]model.Branch, error)
	Get(ctx context.Context, id uint64) (*model.Branch, error)
}

type branchService struct {
	repo repository.BranchRepository
}

func NewBranchService(repo repository.BranchRepository) BranchService {
	return &branchService{repo: repo}
}

func (s *branchService) List(ctx context.Context) ([]model.Branch, error) {
	return s.repo.ListActive(ctx)
}

func (s *branchService) Get(ctx context.Context, id uint64) (*model.Branch, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Branch not found")
		}
		return nil, err
	}
	return b, nil
}
