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
	"github.com/ecorewards/ecorewards-backend/internal/qr"
)

type fakeWasteTypeRepo struct {
	types map[uint64]*model.WasteType
}

func newFakeWasteTypeRepo() *fakeWasteTypeRepo {
	return &fakeWasteTypeRepo{types: map[uint64]*model.WasteType{
		1: plasticType(),
		2: metalType(),
	}}
}

func (f *fakeWasteTypeRepo) FindByID(ctx context.Context, id uint64) (*model.WasteType, error) {
	wt, ok := f.types[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return wt, nil
}

func (f *fakeWasteTypeRepo) FindByIDs(ctx context.Context, ids []uint64) ([]model.WasteType, error) {
	var out []model.WasteType
	seen := make(map[uint64]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if wt, ok := f.types[id]; ok {
			out = append(out, *wt)
		}
	}
	return out, nil
}

func (f *fakeWasteTypeRepo) ListActive(ctx context.Context) ([]model.WasteType, error) {
	var out []model.WasteType
	for _, wt := range f.types {
		out = append(out, *wt)
	}
	return out, nil
}

func (f *fakeWasteTypeRepo) Create(ctx context.Context, wt *model.WasteType) error {
	f.types[wt.ID] = wt
	return nil
}

func newTestPurchaseService(pr *fakePurchaseRepo) PurchaseService {
	return NewPurchaseService(pr, newFakeBranchRepo(), newFakeWasteTypeRepo(), zap.NewNop())
}

func validInput() CreatePurchaseInput {
	return CreatePurchaseInput{
		BranchID:    1,
		TotalAmount: 250,
		Currency:    "MXN",
		Items: []CreatePurchaseItem{
			{WasteTypeID: 1, Name: "Botella PET", Quantity: 2, EstimatedWeight: 0.3},
			{WasteTypeID: 2, Name: "Lata de Aluminio", Quantity: 1, EstimatedWeight: 0.1},
		},
	}
}

func TestCreatePurchaseComputesTotalsAndIssuesQR(t *testing.T) {
	pr := newFakePurchaseRepo()
	svc := newTestPurchaseService(pr)

	p, err := svc.Create(context.Background(), "uid-1", validInput())
	require.NoError(t, err)

	// 2 * 10 plastic points + 1 * 15 metal points
	require.Equal(t, 35, p.PotentialPoints)
	require.InDelta(t, 0.4, p.EstimatedWasteWeight, 0.001)
	require.True(t, strings.HasPrefix(p.PurchaseCode, "ECO-"))
	require.Len(t, p.PurchaseCode, 12)
	require.Equal(t, "MXN", p.Currency)
	require.NotNil(t, p.QRExpiresAt)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), *p.QRExpiresAt, time.Minute)

	require.NotEmpty(t, p.QRData)
	require.Equal(t, p.QRData, pr.attached[p.ID])

	payload, err := qr.Decode(p.QRData)
	require.NoError(t, err)
	require.Equal(t, p.ID, payload.PurchaseID)
	require.Equal(t, "uid-1", payload.UserUID)
	require.Len(t, payload.Items, 2)
	require.Equal(t, "yellow", payload.Items[0].BinColor)
	require.Equal(t, 20, payload.Items[0].Points)
}

func TestCreatePurchaseDefaultsCurrency(t *testing.T) {
	pr := newFakePurchaseRepo()
	svc := newTestPurchaseService(pr)

	in := validInput()
	in.Currency = ""
	p, err := svc.Create(context.Background(), "uid-1", in)
	require.NoError(t, err)
	require.Equal(t, "USD", p.Currency)
}

func TestCreatePurchaseValidation(t *testing.T) {
	pr := newFakePurchaseRepo()
	svc := newTestPurchaseService(pr)

	t.Run("no items", func(t *testing.T) {
		in := validInput()
		in.Items = nil
		_, err := svc.Create(context.Background(), "uid-1", in)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("zero quantity", func(t *testing.T) {
		in := validInput()
		in.Items[0].Quantity = 0
		_, err := svc.Create(context.Background(), "uid-1", in)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("unknown branch", func(t *testing.T) {
		in := validInput()
		in.BranchID = 99
		_, err := svc.Create(context.Background(), "uid-1", in)
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("unknown waste type", func(t *testing.T) {
		in := validInput()
		in.Items[0].WasteTypeID = 99
		_, err := svc.Create(context.Background(), "uid-1", in)
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestGetQRGuards(t *testing.T) {
	pr := newFakePurchaseRepo()
	p := seedPurchase(pr)
	p.QRData = `{"purchase_id":1}`
	p.QRImageURL = "https://api.qrserver.com/v1/create-qr-code/?data=x"
	svc := newTestPurchaseService(pr)

	info, err := svc.GetQR(context.Background(), 1, "uid-1")
	require.NoError(t, err)
	require.Equal(t, p.QRData, info.QRData)

	t.Run("foreign user", func(t *testing.T) {
		_, err := svc.GetQR(context.Background(), 1, "uid-other")
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("expired", func(t *testing.T) {
		expired := time.Now().Add(-time.Minute)
		p.QRExpiresAt = &expired
		defer func() {
			fresh := time.Now().Add(24 * time.Hour)
			p.QRExpiresAt = &fresh
		}()
		_, err := svc.GetQR(context.Background(), 1, "uid-1")
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("already recycled", func(t *testing.T) {
		p.IsRecycled = true
		defer func() { p.IsRecycled = false }()
		_, err := svc.GetQR(context.Background(), 1, "uid-1")
		require.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
	})
}
