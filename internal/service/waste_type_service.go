package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/cache"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

type WasteTypeService interface {
	List(ctx context.Context) ([]model.WasteType, error)
	Get(ctx context.Context, id uint64) (*model.WasteType, error)
	Tips(category string) []string
}

type wasteTypeService struct {
	repo   repository.WasteTypeRepository
	cache  *cache.TaxonomyCache
	logger *zap.Logger
}

func NewWasteTypeService(repo repository.WasteTypeRepository, taxonomy *cache.TaxonomyCache, logger *zap.Logger) WasteTypeService {
	return &wasteTypeService{repo: repo, cache: taxonomy, logger: logger}
}

// List serves the active taxonomy through the cache. The taxonomy is
// small and read on every purchase, so cache failures fall through to
// the database instead of failing the request.
func (s *wasteTypeService) List(ctx context.Context) ([]model.WasteType, error) {
	if s.cache != nil {
		types, err := s.cache.GetWasteTypes(ctx)
		if err == nil {
			return types, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("waste type cache read failed", zap.Error(err))
		}
	}

	types, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWasteTypes(ctx, types); err != nil {
			s.logger.Warn("waste type cache write failed", zap.Error(err))
		}
	}
	return types, nil
}

func (s *wasteTypeService) Get(ctx context.Context, id uint64) (*model.WasteType, error) {
	wt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Waste type not found")
		}
		return nil, err
	}
	return wt, nil
}

var tipsByCategory = map[string][]string{
	"plastic": {
		"Remove all labels and caps before recycling",
		"Rinse containers to remove food residue",
		"Check the recycling number (1-7) on the bottom",
		"Avoid mixing different types of plastic",
	},
	"paper": {
		"Remove any plastic or metal components",
		"Keep paper dry and clean",
		"Separate different paper types (cardboard, newspaper, etc.)",
		"Avoid wax-coated or laminated papers",
	},
	"glass": {
		"Remove all caps and lids",
		"Separate by color if required",
		"Don't mix with other materials",
		"Handle carefully to avoid breaks",
	},
	"metal": {
		"Clean containers thoroughly",
		"Remove any non-metal components",
		"Separate aluminum from steel",
		"Check for magnetic properties to identify steel",
	},
	"organic": {
		"No meat or dairy products",
		"Keep separate from other waste",
		"Chop large items into smaller pieces",
		"Avoid oily or greasy foods",
	},
	"electronic": {
		"Remove batteries separately",
		"Wipe personal data from devices",
		"Keep components together",
		"Handle with care due to sensitive materials",
	},
}

var generalTips = []string{
	"Follow local recycling guidelines",
	"When in doubt, check with your local recycling center",
	"Keep items clean and separate",
}

// Tips returns per-category recycling advice; unknown categories get the
// general guidance.
func (s *wasteTypeService) Tips(category string) []string {
	if tips, ok := tipsByCategory[strings.ToLower(category)]; ok {
		return tips
	}
	return generalTips
}
