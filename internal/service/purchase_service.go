package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/qr"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

const qrValidity = 24 * time.Hour

type CreatePurchaseItem struct {
	WasteTypeID     uint64
	Name            string
	Quantity        int
	EstimatedWeight float64
}

type CreatePurchaseInput struct {
	BranchID    uint64
	TotalAmount float64
	Currency    string
	Items       []CreatePurchaseItem
}

// QRInfo is what a customer needs to present at the bin.
type QRInfo struct {
	PurchaseCode string
	QRData       string
	QRImageURL   string
	ExpiresAt    *time.Time
}

type PurchaseService interface {
	Create(ctx context.Context, userUID string, in CreatePurchaseInput) (*model.Purchase, error)
	GetQR(ctx context.Context, purchaseID uint64, userUID string) (*QRInfo, error)
	Get(ctx context.Context, purchaseID uint64, userUID string) (*model.Purchase, error)
	List(ctx context.Context, userUID string, limit, offset int) ([]model.Purchase, error)
}

type purchaseService struct {
	purchaseRepo  repository.PurchaseRepository
	branchRepo    repository.BranchRepository
	wasteTypeRepo repository.WasteTypeRepository
	logger        *zap.Logger
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	branchRepo repository.BranchRepository,
	wasteTypeRepo repository.WasteTypeRepository,
	logger *zap.Logger,
) PurchaseService {
	return &purchaseService{
		purchaseRepo:  purchaseRepo,
		branchRepo:    branchRepo,
		wasteTypeRepo: wasteTypeRepo,
		logger:        logger,
	}
}

func (s *purchaseService) Create(ctx context.Context, userUID string, in CreatePurchaseInput) (*model.Purchase, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("Purchase must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("Item quantity must be positive")
		}
	}

	if _, err := s.branchRepo.FindByID(ctx, in.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Branch not found")
		}
		return nil, err
	}

	ids := make([]uint64, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.WasteTypeID)
	}
	wasteTypes, err := s.wasteTypeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.WasteType, len(wasteTypes))
	for i := range wasteTypes {
		byID[wasteTypes[i].ID] = &wasteTypes[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperr.NotFound("One or more waste types not found")
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	expiresAt := time.Now().Add(qrValidity)

	purchase := &model.Purchase{
		PurchaseCode: newCode("ECO", 8),
		UserUID:      userUID,
		BranchID:     in.BranchID,
		TotalAmount:  in.TotalAmount,
		Currency:     currency,
		QRExpiresAt:  &expiresAt,
	}

	payloadItems := make([]qr.Item, 0, len(in.Items))
	for _, item := range in.Items {
		wt := byID[item.WasteTypeID]
		potential := wt.RecyclingPoints * item.Quantity

		purchase.Items = append(purchase.Items, model.PurchaseItem{
			WasteTypeID:     item.WasteTypeID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			EstimatedWeight: item.EstimatedWeight,
			PotentialPoints: potential,
		})
		purchase.PotentialPoints += potential
		purchase.EstimatedWasteWeight += item.EstimatedWeight

		payloadItems = append(payloadItems, qr.Item{
			Name:          item.Name,
			WasteTypeID:   wt.ID,
			WasteTypeName: wt.Name,
			Category:      wt.Category,
			BinColor:      wt.BinColor,
			Quantity:      item.Quantity,
			Points:        potential,
		})
	}

	// The payload references the purchase id, so reserve the row first,
	// then attach the QR. Issued once; never regenerated.
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}
	data, imageURL, err := qr.Encode(qr.Payload{
		PurchaseID:   purchase.ID,
		PurchaseCode: purchase.PurchaseCode,
		UserUID:      userUID,
		BranchID:     in.BranchID,
		Items:        payloadItems,
	})
	if err != nil {
		return nil, err
	}
	purchase.QRData = data
	purchase.QRImageURL = imageURL
	if err := s.purchaseRepo.AttachQR(ctx, purchase.ID, data, imageURL); err != nil {
		return nil, err
	}

	s.logger.Info("purchase created",
		zap.String("purchase_code", purchase.PurchaseCode),
		zap.String("user_uid", userUID),
		zap.Int("potential_points", purchase.PotentialPoints),
	)
	return purchase, nil
}

func (s *purchaseService) GetQR(ctx context.Context, purchaseID uint64, userUID string) (*QRInfo, error) {
	p, err := s.purchaseRepo.FindByIDAndUser(ctx, purchaseID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Purchase not found")
		}
		return nil, err
	}
	if p.QRExpiresAt != nil && p.QRExpiresAt.Before(time.Now()) {
		return nil, apperr.Validation("QR code has expired")
	}
	if p.IsRecycled {
		return nil, apperr.BusinessRule("Purchase has already been recycled")
	}
	return &QRInfo{
		PurchaseCode: p.PurchaseCode,
		QRData:       p.QRData,
		QRImageURL:   p.QRImageURL,
		ExpiresAt:    p.QRExpiresAt,
	}, nil
}

func (s *purchaseService) Get(ctx context.Context, purchaseID uint64, userUID string) (*model.Purchase, error) {
	p, err := s.purchaseRepo.FindByIDAndUser(ctx, purchaseID, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Purchase not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *purchaseService) List(ctx context.Context, userUID string, limit, offset int) ([]model.Purchase, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.purchaseRepo.ListByUser(ctx, userUID, limit, offset)
}

// newCode builds codes like ECO-5F3A9B21 from a uuid.
func newCode(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(hex[:n]))
}
