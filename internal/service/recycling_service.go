package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/ai"
	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/audit"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/qr"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
	"github.com/ecorewards/ecorewards-backend/internal/storage"
)

// fallbackWeightKg patches classifier responses that return fewer weight
// estimates than items.
const fallbackWeightKg = 0.1

// ItemVerdict is one per-item judgement submitted for validation,
// matched positionally to the event's items.
type ItemVerdict struct {
	WasteTypeID           uint64
	IsCorrectlyClassified bool
	PredictedBin          string
	ConfidenceScore       float64
}

type ScanItem struct {
	Name            string
	WasteTypeName   string
	Category        string
	BinColor        string
	Instructions    string
	Quantity        int
	PotentialPoints int
}

type ScanResult struct {
	EventID         uint64
	EventCode       string
	PurchaseCode    string
	BranchName      string
	TotalAmount     float64
	PotentialPoints int
	Items           []ScanItem
	Message         string
	Instructions    string
}

type ItemFeedback struct {
	Item     string
	Status   string
	Message  string
	BinColor string
}

type ValidationResult struct {
	Success       bool
	Message       string
	PointsEarned  int
	AccuracyScore float64
	Feedback      []ItemFeedback
	NextSteps     string
}

type RecyclingService interface {
	ScanQR(ctx context.Context, userUID, qrData string) (*ScanResult, error)
	Validate(ctx context.Context, userUID string, eventID uint64, imageData string, verdicts []ItemVerdict) (*ValidationResult, error)
	History(ctx context.Context, userUID string, limit, offset int) ([]model.RecyclingEvent, error)
	Get(ctx context.Context, eventID uint64, userUID string) (*model.RecyclingEvent, error)
}

type recyclingService struct {
	recyclingRepo repository.RecyclingRepository
	purchaseRepo  repository.PurchaseRepository
	branchRepo    repository.BranchRepository
	classifier    ai.Classifier
	audit         audit.Logger
	uploader      *storage.Uploader
	logger        *zap.Logger
}

func NewRecyclingService(
	recyclingRepo repository.RecyclingRepository,
	purchaseRepo repository.PurchaseRepository,
	branchRepo repository.BranchRepository,
	classifier ai.Classifier,
	auditLog audit.Logger,
	uploader *storage.Uploader,
	logger *zap.Logger,
) RecyclingService {
	return &recyclingService{
		recyclingRepo: recyclingRepo,
		purchaseRepo:  purchaseRepo,
		branchRepo:    branchRepo,
		classifier:    classifier,
		audit:         auditLog,
		uploader:      uploader,
		logger:        logger,
	}
}

// ScanQR decodes a presented QR and opens a recycling event for its
// purchase. The purchase and the user's totals stay untouched until
// validation settles.
func (s *recyclingService) ScanQR(ctx context.Context, userUID, qrData string) (*ScanResult, error) {
	payload, err := qr.Decode(qrData)
	if err != nil {
		return nil, err
	}

	purchase, err := s.purchaseRepo.FindByIDAndUser(ctx, payload.PurchaseID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Purchase not found or access denied")
		}
		return nil, err
	}
	if purchase.QRExpiresAt != nil && purchase.QRExpiresAt.Before(time.Now()) {
		return nil, apperr.Validation("QR code has expired")
	}
	if purchase.IsRecycled {
		return nil, apperr.BusinessRule("This purchase has already been recycled")
	}

	now := time.Now()
	event := &model.RecyclingEvent{
		EventCode:        newCode("REC", 8),
		UserUID:          userUID,
		PurchaseID:       purchase.ID,
		BranchID:         purchase.BranchID,
		Status:           model.RecyclingStatusPending,
		ValidationStatus: model.ValidationStatusPending,
		PointsPotential:  purchase.PotentialPoints,
		QRScannedAt:      &now,
	}

	items := make([]ScanItem, 0, len(purchase.Items))
	for _, pi := range purchase.Items {
		event.Items = append(event.Items, model.RecyclingItem{
			WasteTypeID:     pi.WasteTypeID,
			Name:            pi.Name,
			Quantity:        pi.Quantity,
			PointsPotential: pi.PotentialPoints,
		})
		item := ScanItem{
			Name:            pi.Name,
			Quantity:        pi.Quantity,
			PotentialPoints: pi.PotentialPoints,
		}
		if pi.WasteType != nil {
			item.WasteTypeName = pi.WasteType.Name
			item.Category = pi.WasteType.Category
			item.BinColor = pi.WasteType.BinColor
			item.Instructions = pi.WasteType.RecyclingNotes
		}
		items = append(items, item)
	}

	if err := s.recyclingRepo.CreateWithItems(ctx, event); err != nil {
		return nil, err
	}

	s.audit.RecordScan(audit.ScanEntry{
		RecyclingEventID: event.ID,
		EventCode:        event.EventCode,
		UserUID:          userUID,
		PurchaseID:       purchase.ID,
		BranchID:         purchase.BranchID,
		ItemsCount:       len(items),
		Timestamp:        now,
	})

	branchName := ""
	if branch, err := s.branchRepo.FindByID(ctx, purchase.BranchID); err == nil {
		branchName = branch.Name
	}

	s.logger.Info("qr scanned",
		zap.String("event_code", event.EventCode),
		zap.String("user_uid", userUID),
		zap.Uint64("purchase_id", purchase.ID),
	)

	return &ScanResult{
		EventID:         event.ID,
		EventCode:       event.EventCode,
		PurchaseCode:    purchase.PurchaseCode,
		BranchName:      branchName,
		TotalAmount:     purchase.TotalAmount,
		PotentialPoints: purchase.PotentialPoints,
		Items:           items,
		Message:         "QR code scanned successfully. Please proceed to validate recycling.",
		Instructions:    "Please place each item in the correct recycling bin and take a photo for validation.",
	}, nil
}

// Validate runs the classification oracle over a pending event and
// settles the outcome. The pending -> in_progress edge is a conditional
// update committed before the oracle call, so concurrent validators lose
// the race cleanly and a crash leaves the event observably in progress.
func (s *recyclingService) Validate(ctx context.Context, userUID string, eventID uint64, imageData string, verdicts []ItemVerdict) (*ValidationResult, error) {
	event, err := s.recyclingRepo.FindByIDAndUser(ctx, eventID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Recycling event not found")
		}
		return nil, err
	}

	startedAt := time.Now()
	won, err := s.recyclingRepo.BeginValidation(ctx, event.ID, startedAt)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperr.BusinessRule("Recycling event is not in pending status")
	}
	event.Status = model.RecyclingStatusInProgress
	event.ValidationStartedAt = &startedAt

	result, err := s.validateLocked(ctx, event, imageData, verdicts)
	if err != nil {
		// Compensate: never leave the event stuck in progress.
		if markErr := s.recyclingRepo.MarkFailed(ctx, event.ID); markErr != nil {
			s.logger.Error("failed to mark event failed",
				zap.Uint64("event_id", event.ID),
				zap.Error(markErr),
			)
		}
		s.logger.Warn("recycling validation failed",
			zap.String("event_code", event.EventCode),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (s *recyclingService) validateLocked(ctx context.Context, event *model.RecyclingEvent, imageData string, verdicts []ItemVerdict) (*ValidationResult, error) {
	expected := make([]ai.ExpectedItem, 0, len(event.Items))
	for _, item := range event.Items {
		e := ai.ExpectedItem{WasteTypeID: item.WasteTypeID, Name: item.Name}
		if item.WasteType != nil {
			e.Category = item.WasteType.Category
		}
		expected = append(expected, e)
	}

	aiResult, err := s.classifier.Classify(ctx, imageData, expected)
	if err != nil {
		return nil, apperr.External("AI validation failed", err)
	}

	if len(verdicts) > len(event.Items) {
		return nil, apperr.Validation("More item validations than recycling items")
	}

	totalPoints := 0
	correct := 0
	feedback := make([]ItemFeedback, 0, len(verdicts))

	for i, v := range verdicts {
		item := &event.Items[i]
		item.IsCorrectlyClassified = v.IsCorrectlyClassified
		item.PredictedBin = v.PredictedBin
		item.ConfidenceScore = v.ConfidenceScore

		binColor := ""
		if item.WasteType != nil {
			binColor = item.WasteType.BinColor
		}

		if v.IsCorrectlyClassified {
			correct++
			item.PointsAwarded = item.PointsPotential
			if i < len(aiResult.EstimatedWeights) {
				item.WeightRecycled = aiResult.EstimatedWeights[i]
			} else {
				item.WeightRecycled = fallbackWeightKg
			}
			totalPoints += item.PointsAwarded
			feedback = append(feedback, ItemFeedback{
				Item:     item.Name,
				Status:   "correct",
				Message:  fmt.Sprintf("Correctly classified! Earned %d points.", item.PointsAwarded),
				BinColor: binColor,
			})
		} else {
			item.PointsAwarded = 0
			item.RejectedReason = "Incorrect classification"
			feedback = append(feedback, ItemFeedback{
				Item:     item.Name,
				Status:   "incorrect",
				Message:  fmt.Sprintf("Incorrect classification. Should go in %s bin.", binColor),
				BinColor: binColor,
			})
		}
	}

	accuracy := 0.0
	if len(verdicts) > 0 {
		accuracy = float64(correct) / float64(len(verdicts)) * 100
	}

	completedAt := time.Now()
	event.AccuracyScore = accuracy
	event.PointsEarned = totalPoints
	event.ValidationStatus = model.ValidationStatusValidated
	event.Status = model.RecyclingStatusCompleted
	event.ValidationCompletedAt = &completedAt
	event.AIValidationID = aiResult.ValidationID
	event.AIConfidenceScore = aiResult.OverallConfidence
	event.TotalWeightRecycled = event.TotalWeight()
	event.CarbonFootprintReduced = event.CarbonReduced()

	if s.uploader != nil {
		if imageBytes, decErr := base64.StdEncoding.DecodeString(imageData); decErr == nil {
			event.ValidationImageURL = s.uploader.UploadValidationImage(ctx, event.EventCode, imageBytes)
		}
	}

	if err := s.recyclingRepo.SettleCompleted(ctx, event, correct); err != nil {
		if errors.Is(err, repository.ErrAlreadySettled) {
			return nil, apperr.BusinessRule("This purchase has already been recycled")
		}
		return nil, err
	}

	s.audit.RecordValidation(audit.ValidationEntry{
		ValidationID:           aiResult.ValidationID,
		RecyclingEventID:       event.ID,
		UserUID:                event.UserUID,
		AccuracyScore:          accuracy,
		PointsEarned:           totalPoints,
		AIConfidence:           aiResult.OverallConfidence,
		ItemsValidated:         len(verdicts),
		CorrectClassifications: correct,
		ProcessingTimeSec:      aiResult.ProcessingTimeSec,
		Timestamp:              completedAt,
	})

	s.logger.Info("recycling validated",
		zap.String("event_code", event.EventCode),
		zap.Float64("accuracy", accuracy),
		zap.Int("points_earned", totalPoints),
	)

	return &ValidationResult{
		Success:       true,
		Message:       fmt.Sprintf("Recycling validation completed with %.1f%% accuracy.", accuracy),
		PointsEarned:  totalPoints,
		AccuracyScore: accuracy,
		Feedback:      feedback,
		NextSteps:     nextSteps(accuracy),
	}, nil
}

func nextSteps(accuracy float64) string {
	switch {
	case accuracy >= 80:
		return "Excellent recycling! Keep up the great work."
	case accuracy >= 60:
		return "Good effort! Review the feedback to improve your recycling accuracy."
	default:
		return "Please review the recycling guidelines and try again next time."
	}
}

func (s *recyclingService) History(ctx context.Context, userUID string, limit, offset int) ([]model.RecyclingEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.recyclingRepo.ListByUser(ctx, userUID, limit, offset)
}

func (s *recyclingService) Get(ctx context.Context, eventID uint64, userUID string) (*model.RecyclingEvent, error) {
	event, err := s.recyclingRepo.FindByIDAndUser(ctx, eventID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Recycling event not found")
		}
		return nil, err
	}
	return event, nil
}
