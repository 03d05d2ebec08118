package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/ai"
	"github.com/ecorewards/ecorewards-backend/internal/apperr"
	"github.com/ecorewards/ecorewards-backend/internal/audit"
	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/qr"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
)

var testImageData = base64.StdEncoding.EncodeToString([]byte("photo"))

type fakeRecyclingRepo struct {
	events         map[uint64]*model.RecyclingEvent
	nextID         uint64
	beginOK        bool
	settled        *model.RecyclingEvent
	settledCorrect int
	settleErr      error
	failedIDs      []uint64
}

func newFakeRecyclingRepo() *fakeRecyclingRepo {
	return &fakeRecyclingRepo{events: make(map[uint64]*model.RecyclingEvent), nextID: 1, beginOK: true}
}

func (f *fakeRecyclingRepo) CreateWithItems(ctx context.Context, e *model.RecyclingEvent) error {
	e.ID = f.nextID
	f.nextID++
	f.events[e.ID] = e
	return nil
}

func (f *fakeRecyclingRepo) FindByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.RecyclingEvent, error) {
	e, ok := f.events[id]
	if !ok || e.UserUID != userUID {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeRecyclingRepo) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]model.RecyclingEvent, error) {
	var out []model.RecyclingEvent
	for _, e := range f.events {
		if e.UserUID == userUID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRecyclingRepo) BeginValidation(ctx context.Context, eventID uint64, startedAt time.Time) (bool, error) {
	return f.beginOK, nil
}

func (f *fakeRecyclingRepo) SettleCompleted(ctx context.Context, e *model.RecyclingEvent, correctItems int) error {
	if f.settleErr != nil {
		return f.settleErr
	}
	f.settled = e
	f.settledCorrect = correctItems
	return nil
}

func (f *fakeRecyclingRepo) MarkFailed(ctx context.Context, eventID uint64) error {
	f.failedIDs = append(f.failedIDs, eventID)
	return nil
}

func (f *fakeRecyclingRepo) Overview(ctx context.Context) (*repository.Overview, error) {
	return &repository.Overview{}, nil
}

func (f *fakeRecyclingRepo) StatsByUser(ctx context.Context, userUID string) (*repository.UserStats, error) {
	return &repository.UserStats{}, nil
}

type fakePurchaseRepo struct {
	purchases map[uint64]*model.Purchase
	attached  map[uint64]string
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[uint64]*model.Purchase), attached: make(map[uint64]string)}
}

func (f *fakePurchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	if p.ID == 0 {
		p.ID = uint64(len(f.purchases) + 1)
	}
	f.purchases[p.ID] = p
	return nil
}

func (f *fakePurchaseRepo) AttachQR(ctx context.Context, id uint64, data, imageURL string) error {
	f.attached[id] = data
	if p, ok := f.purchases[id]; ok {
		p.QRData = data
		p.QRImageURL = imageURL
	}
	return nil
}

func (f *fakePurchaseRepo) FindByIDAndUser(ctx context.Context, id uint64, userUID string) (*model.Purchase, error) {
	p, ok := f.purchases[id]
	if !ok || p.UserUID != userUID {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePurchaseRepo) ListByUser(ctx context.Context, userUID string, limit, offset int) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, p := range f.purchases {
		if p.UserUID == userUID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeBranchRepo struct {
	branches map[uint64]*model.Branch
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{branches: map[uint64]*model.Branch{
		1: {ID: 1, Name: "EcoRestaurant Centro", City: "Ciudad de México", IsActive: true},
	}}
}

func (f *fakeBranchRepo) FindByID(ctx context.Context, id uint64) (*model.Branch, error) {
	b, ok := f.branches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (f *fakeBranchRepo) ListActive(ctx context.Context) ([]model.Branch, error) {
	var out []model.Branch
	for _, b := range f.branches {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBranchRepo) TopByRecycledItems(ctx context.Context, limit int) ([]model.Branch, error) {
	return f.ListActive(ctx)
}

func (f *fakeBranchRepo) CountActive(ctx context.Context) (int64, error) {
	return int64(len(f.branches)), nil
}

func (f *fakeBranchRepo) Create(ctx context.Context, b *model.Branch) error {
	f.branches[b.ID] = b
	return nil
}

type fakeClassifier struct {
	result *ai.Result
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, imageData string, expected []ai.ExpectedItem) (*ai.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func plasticType() *model.WasteType {
	return &model.WasteType{ID: 1, Name: "Botella PET", Category: "plastic", RecyclingPoints: 10, CarbonFootprintKg: 2.5, BinColor: "yellow", IsActive: true}
}

func metalType() *model.WasteType {
	return &model.WasteType{ID: 2, Name: "Lata de Aluminio", Category: "metal", RecyclingPoints: 15, CarbonFootprintKg: 3.2, BinColor: "gray", IsActive: true}
}

func seedPurchase(pr *fakePurchaseRepo) *model.Purchase {
	expires := time.Now().Add(24 * time.Hour)
	p := &model.Purchase{
		ID:              1,
		PurchaseCode:    "ECO-AABBCCDD",
		UserUID:         "uid-1",
		BranchID:        1,
		TotalAmount:     250,
		PotentialPoints: 35,
		QRExpiresAt:     &expires,
		Items: []model.PurchaseItem{
			{ID: 1, PurchaseID: 1, WasteTypeID: 1, Name: "Botella PET", Quantity: 2, PotentialPoints: 20, WasteType: plasticType()},
			{ID: 2, PurchaseID: 1, WasteTypeID: 2, Name: "Lata de Aluminio", Quantity: 1, PotentialPoints: 15, WasteType: metalType()},
		},
	}
	pr.purchases[1] = p
	return p
}

func qrDataFor(t *testing.T, p *model.Purchase) string {
	t.Helper()
	payload := qr.Payload{
		PurchaseID:   p.ID,
		PurchaseCode: p.PurchaseCode,
		UserUID:      p.UserUID,
		BranchID:     p.BranchID,
	}
	for _, item := range p.Items {
		payload.Items = append(payload.Items, qr.Item{
			Name:          item.Name,
			WasteTypeID:   item.WasteTypeID,
			WasteTypeName: item.WasteType.Name,
			Category:      item.WasteType.Category,
			BinColor:      item.WasteType.BinColor,
			Quantity:      item.Quantity,
			Points:        item.PotentialPoints,
		})
	}
	data, _, err := qr.Encode(payload)
	require.NoError(t, err)
	return data
}

func newTestRecyclingService(rr *fakeRecyclingRepo, pr *fakePurchaseRepo, cls ai.Classifier) RecyclingService {
	return NewRecyclingService(rr, pr, newFakeBranchRepo(), cls, audit.NewNoopLogger(), nil, zap.NewNop())
}

func TestScanQROpensPendingEvent(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	p := seedPurchase(pr)
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{})

	res, err := svc.ScanQR(context.Background(), "uid-1", qrDataFor(t, p))
	require.NoError(t, err)
	require.Equal(t, "ECO-AABBCCDD", res.PurchaseCode)
	require.Equal(t, 35, res.PotentialPoints)
	require.Len(t, res.Items, 2)
	require.Equal(t, "yellow", res.Items[0].BinColor)

	event := rr.events[res.EventID]
	require.NotNil(t, event)
	require.Equal(t, model.RecyclingStatusPending, event.Status)
	require.Equal(t, model.ValidationStatusPending, event.ValidationStatus)
	require.Equal(t, 35, event.PointsPotential)
	require.Len(t, event.Items, 2)
	require.Zero(t, event.PointsEarned)

	// The purchase itself stays untouched until settlement.
	require.False(t, p.IsRecycled)
}

func TestScanQRRejectsRecycledPurchase(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	p := seedPurchase(pr)
	p.IsRecycled = true
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{})

	_, err := svc.ScanQR(context.Background(), "uid-1", qrDataFor(t, p))
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
	require.Empty(t, rr.events)
}

func TestScanQRRejectsExpiredQR(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	p := seedPurchase(pr)
	expired := time.Now().Add(-time.Hour)
	p.QRExpiresAt = &expired
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{})

	_, err := svc.ScanQR(context.Background(), "uid-1", qrDataFor(t, p))
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestScanQREnforcesOwnership(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	p := seedPurchase(pr)
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{})

	_, err := svc.ScanQR(context.Background(), "uid-other", qrDataFor(t, p))
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func seedPendingEvent(rr *fakeRecyclingRepo, pr *fakePurchaseRepo) *model.RecyclingEvent {
	seedPurchase(pr)
	now := time.Now()
	e := &model.RecyclingEvent{
		ID:               10,
		EventCode:        "REC-11223344",
		UserUID:          "uid-1",
		PurchaseID:       1,
		BranchID:         1,
		Status:           model.RecyclingStatusPending,
		ValidationStatus: model.ValidationStatusPending,
		PointsPotential:  35,
		QRScannedAt:      &now,
		Items: []model.RecyclingItem{
			{ID: 1, RecyclingEventID: 10, WasteTypeID: 1, Name: "Botella PET", Quantity: 2, PointsPotential: 20, WasteType: plasticType()},
			{ID: 2, RecyclingEventID: 10, WasteTypeID: 2, Name: "Lata de Aluminio", Quantity: 1, PointsPotential: 15, WasteType: metalType()},
		},
	}
	rr.events[e.ID] = e
	return e
}

func okResult() *ai.Result {
	return &ai.Result{
		ValidationID:      "AI-00112233AABB",
		OverallConfidence: 0.82,
		EstimatedWeights:  []float64{0.3, 0.2},
		ProcessingTimeSec: 1.2,
	}
}

func TestValidateSettlesMixedVerdicts(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	seedPendingEvent(rr, pr)
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{result: okResult()})

	verdicts := []ItemVerdict{
		{WasteTypeID: 1, IsCorrectlyClassified: true, PredictedBin: "yellow", ConfidenceScore: 0.9},
		{WasteTypeID: 2, IsCorrectlyClassified: false, PredictedBin: "blue", ConfidenceScore: 0.7},
	}
	res, err := svc.Validate(context.Background(), "uid-1", 10, testImageData, verdicts)
	require.NoError(t, err)

	require.True(t, res.Success)
	require.Equal(t, 20, res.PointsEarned)
	require.InDelta(t, 50.0, res.AccuracyScore, 0.001)
	require.Len(t, res.Feedback, 2)
	require.Equal(t, "correct", res.Feedback[0].Status)
	require.Equal(t, "incorrect", res.Feedback[1].Status)
	require.Contains(t, res.Feedback[1].Message, "gray bin")

	require.NotNil(t, rr.settled)
	require.Equal(t, 1, rr.settledCorrect)
	e := rr.settled
	require.Equal(t, model.RecyclingStatusCompleted, e.Status)
	require.Equal(t, model.ValidationStatusValidated, e.ValidationStatus)
	require.Equal(t, 20, e.PointsEarned)
	require.Equal(t, "AI-00112233AABB", e.AIValidationID)
	require.InDelta(t, 0.3, e.Items[0].WeightRecycled, 0.001)
	require.Zero(t, e.Items[1].WeightRecycled)
	require.Equal(t, "Incorrect classification", e.Items[1].RejectedReason)
	// carbon = 0.3 kg * 2.5 for the correct plastic item only
	require.InDelta(t, 0.75, e.CarbonFootprintReduced, 0.001)
	require.Empty(t, rr.failedIDs)
}

func TestValidateLosesPendingRace(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	seedPendingEvent(rr, pr)
	rr.beginOK = false
	cls := &fakeClassifier{result: okResult()}
	svc := newTestRecyclingService(rr, pr, cls)

	_, err := svc.Validate(context.Background(), "uid-1", 10, testImageData, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
	require.Zero(t, cls.calls)
	require.Nil(t, rr.settled)
	require.Empty(t, rr.failedIDs)
}

func TestValidateOracleFailureMarksFailed(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	seedPendingEvent(rr, pr)
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{err: errors.New("model unavailable")})

	_, err := svc.Validate(context.Background(), "uid-1", 10, testImageData, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindExternal, apperr.KindOf(err))
	require.Equal(t, []uint64{10}, rr.failedIDs)
	require.Nil(t, rr.settled)
}

func TestValidateAlreadySettledRollsBack(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	seedPendingEvent(rr, pr)
	rr.settleErr = repository.ErrAlreadySettled
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{result: okResult()})

	verdicts := []ItemVerdict{
		{WasteTypeID: 1, IsCorrectlyClassified: true, PredictedBin: "yellow", ConfidenceScore: 0.9},
		{WasteTypeID: 2, IsCorrectlyClassified: true, PredictedBin: "gray", ConfidenceScore: 0.9},
	}
	_, err := svc.Validate(context.Background(), "uid-1", 10, testImageData, verdicts)
	require.Error(t, err)
	require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
	require.Equal(t, []uint64{10}, rr.failedIDs)
}

func TestValidateWeightFallback(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	seedPendingEvent(rr, pr)
	result := okResult()
	result.EstimatedWeights = []float64{0.3} // one short
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{result: result})

	verdicts := []ItemVerdict{
		{WasteTypeID: 1, IsCorrectlyClassified: true, PredictedBin: "yellow", ConfidenceScore: 0.9},
		{WasteTypeID: 2, IsCorrectlyClassified: true, PredictedBin: "gray", ConfidenceScore: 0.8},
	}
	res, err := svc.Validate(context.Background(), "uid-1", 10, testImageData, verdicts)
	require.NoError(t, err)
	require.Equal(t, 35, res.PointsEarned)
	require.InDelta(t, 100.0, res.AccuracyScore, 0.001)
	require.InDelta(t, 0.3, rr.settled.Items[0].WeightRecycled, 0.001)
	require.InDelta(t, 0.1, rr.settled.Items[1].WeightRecycled, 0.001)
}

func TestValidateUnknownEvent(t *testing.T) {
	rr := newFakeRecyclingRepo()
	pr := newFakePurchaseRepo()
	svc := newTestRecyclingService(rr, pr, &fakeClassifier{})

	_, err := svc.Validate(context.Background(), "uid-1", 99, testImageData, nil)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestNextStepsTiers(t *testing.T) {
	require.Contains(t, nextSteps(95), "Excellent")
	require.Contains(t, nextSteps(80), "Excellent")
	require.Contains(t, nextSteps(65), "Good effort")
	require.Contains(t, nextSteps(10), "guidelines")
}
