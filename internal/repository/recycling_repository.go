package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"gorm.io/gorm"
)

// ErrAlreadySettled means the purchase behind an event was credited by a
// concurrent duplicate event. The settlement transaction rolls back.
var ErrAlreadySettled = errors.New("purchase already settled")

// Overview carries the fleet-wide aggregates for the admin dashboard.
type Overview struct {
	TotalEvents         int64
	TotalWeightRecycled float64
	TotalCarbonReduced  float64
	TotalPointsEarned   int64
	AverageAccuracy     float64
}

// UserStats summarizes one user's recycling history.
type UserStats struct {
	TotalEvents         int64
	CompletedEvents     int64
	TotalPointsEarned   int64
	AverageAccuracy     float64
	TotalWeightRecycled float64
	TotalCarbonReduced  float64
}

type RecyclingRepository interface {
	// CreateWithItems persists the event and its items as one unit.
	CreateWithItems(ctx context.Context, e *model.RecyclingEvent) error
	FindByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.RecyclingEvent, error)
	ListByUser(ctx context.Context, userUID string, limit, offset int) ([]model.RecyclingEvent, error)

	// BeginValidation moves the event from pending to in_progress if and
	// only if it is still pending. false means another caller won the race
	// or the event is past that state.
	BeginValidation(ctx context.Context, eventID uint64, startedAt time.Time) (bool, error)

	// SettleCompleted commits the validated event together with the user,
	// purchase and branch updates. The purchase is flipped to recycled
	// under an is_recycled=0 guard; ErrAlreadySettled aborts everything.
	SettleCompleted(ctx context.Context, e *model.RecyclingEvent, correctItems int) error

	// MarkFailed is the compensating write after a validation error.
	MarkFailed(ctx context.Context, eventID uint64) error

	Overview(ctx context.Context) (*Overview, error)
	StatsByUser(ctx context.Context, userUID string) (*UserStats, error)
}

type recyclingRepository struct {
	db *gorm.DB
}

func NewRecyclingRepository(db *gorm.DB) RecyclingRepository {
	return &recyclingRepository{db: db}
}

func (r *recyclingRepository) CreateWithItems(ctx context.Context, e *model.RecyclingEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *recyclingRepository) FindByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.RecyclingEvent, error) {
	var e model.RecyclingEvent
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.WasteType").
		Where("id = ? AND user_uid = ?", id, userUID).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *recyclingRepository) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]model.RecyclingEvent, error) {
	var list []model.RecyclingEvent
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *recyclingRepository) BeginValidation(ctx context.Context, eventID uint64, startedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.RecyclingEvent{}).
		Where("id = ? AND status = ?", eventID, model.RecyclingStatusPending).
		Updates(map[string]interface{}{
			"status":                model.RecyclingStatusInProgress,
			"validation_started_at": startedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recyclingRepository) SettleCompleted(ctx context.Context, e *model.RecyclingEvent, correctItems int) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Purchase{}).
			Where("id = ? AND is_recycled = ?", e.PurchaseID, false).
			Updates(map[string]interface{}{
				"is_recycled": true,
				"recycled_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		if err := tx.Omit("Items").Save(e).Error; err != nil {
			return err
		}
		for i := range e.Items {
			item := &e.Items[i]
			if err := tx.Model(&model.RecyclingItem{}).
				Where("id = ?", item.ID).
				Updates(map[string]interface{}{
					"weight_recycled":         item.WeightRecycled,
					"is_correctly_classified": item.IsCorrectlyClassified,
					"predicted_bin":           item.PredictedBin,
					"confidence_score":        item.ConfidenceScore,
					"points_awarded":          item.PointsAwarded,
					"rejected_reason":         item.RejectedReason,
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&model.User{}).
			Where("uid = ?", e.UserUID).
			Updates(map[string]interface{}{
				"total_points":             gorm.Expr("total_points + ?", e.PointsEarned),
				"total_recycled_items":     gorm.Expr("total_recycled_items + ?", correctItems),
				"carbon_footprint_reduced": gorm.Expr("carbon_footprint_reduced + ?", e.CarbonFootprintReduced),
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.Branch{}).
			Where("id = ?", e.BranchID).
			Updates(map[string]interface{}{
				"total_recycled_items": gorm.Expr("total_recycled_items + ?", correctItems),
				"total_carbon_reduced": gorm.Expr("total_carbon_reduced + ?", e.CarbonFootprintReduced),
			}).Error
	})
}

func (r *recyclingRepository) MarkFailed(ctx context.Context, eventID uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.RecyclingEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":            model.RecyclingStatusFailed,
			"validation_status": model.ValidationStatusRejected,
		}).Error
}

func (r *recyclingRepository) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	if err := r.db.WithContext(ctx).
		Model(&model.RecyclingEvent{}).
		Count(&o.TotalEvents).Error; err != nil {
		return nil, err
	}
	row := r.db.WithContext(ctx).
		Model(&model.RecyclingEvent{}).
		Select("COALESCE(SUM(total_weight_recycled),0), COALESCE(SUM(carbon_footprint_reduced),0), COALESCE(SUM(points_earned),0), COALESCE(AVG(accuracy_score),0)").
		Row()
	if err := row.Scan(&o.TotalWeightRecycled, &o.TotalCarbonReduced, &o.TotalPointsEarned, &o.AverageAccuracy); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *recyclingRepository) StatsByUser(ctx context.Context, userUID string) (*UserStats, error) {
	var s UserStats
	row := r.db.WithContext(ctx).
		Model(&model.RecyclingEvent{}).
		Where("user_uid = ?", userUID).
		Select("COUNT(*), COALESCE(SUM(status = 'completed'),0), COALESCE(SUM(points_earned),0), COALESCE(AVG(accuracy_score),0), COALESCE(SUM(total_weight_recycled),0), COALESCE(SUM(carbon_footprint_reduced),0)").
		Row()
	if err := row.Scan(&s.TotalEvents, &s.CompletedEvents, &s.TotalPointsEarned, &s.AverageAccuracy, &s.TotalWeightRecycled, &s.TotalCarbonReduced); err != nil {
		return nil, err
	}
	return &s, nil
}
