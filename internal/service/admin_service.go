package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

type BranchRanking struct {
	Branch model.Branch
	Rank   int
}

type UserRanking struct {
	User model.User
	Rank int
}

// Dashboard aggregates platform-wide environmental statistics for the
// admin console.
type Dashboard struct {
	Overview      repository.Overview
	ActiveUsers   int64
	TotalBranches int64
	TopBranches   []BranchRanking
	TopUsers      []UserRanking
}

type AdminService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type adminService struct {
	recyclingRepo repository.RecyclingRepository
	branchRepo    repository.BranchRepository
	userRepo      repository.UserRepository
}

func NewAdminService(recyclingRepo repository.RecyclingRepository, branchRepo repository.BranchRepository, userRepo repository.UserRepository) AdminService {
	return &adminService{recyclingRepo: recyclingRepo, branchRepo: branchRepo, userRepo: userRepo}
}

// Dashboard fans the independent aggregate queries out concurrently and
// fails on the first error.
func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		overview, err := s.recyclingRepo.Overview(gctx)
		if err != nil {
			return err
		}
		dash.Overview = *overview
		return nil
	})
	g.Go(func() error {
		n, err := s.userRepo.CountActive(gctx)
		if err != nil {
			return err
		}
		dash.ActiveUsers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.branchRepo.CountActive(gctx)
		if err != nil {
			return err
		}
		dash.TotalBranches = n
		return nil
	})
	g.Go(func() error {
		branches, err := s.branchRepo.TopByRecycledItems(gctx, 10)
		if err != nil {
			return err
		}
		for i, b := range branches {
			dash.TopBranches = append(dash.TopBranches, BranchRanking{Branch: b, Rank: i + 1})
		}
		return nil
	})
	g.Go(func() error {
		users, err := s.userRepo.TopByPoints(gctx, 10)
		if err != nil {
			return err
		}
		for i, u := range users {
			dash.TopUsers = append(dash.TopUsers, UserRanking{User: u, Rank: i + 1})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dash, nil
}
