package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
)

func TestWasteTypeListWithoutCache(t *testing.T) {
	svc := NewWasteTypeService(newFakeWasteTypeRepo(), nil, zap.NewNop())

	types, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
}

func TestWasteTypeGetNotFound(t *testing.T) {
	svc := NewWasteTypeService(newFakeWasteTypeRepo(), nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestWasteTypeTips(t *testing.T) {
	svc := NewWasteTypeService(newFakeWasteTypeRepo(), nil, zap.NewNop())

	tips := svc.Tips("plastic")
	require.NotEmpty(t, tips)
	require.Contains(t, tips[0], "labels")

	// case-insensitive lookup
	require.Equal(t, tips, svc.Tips("PLASTIC"))

	// unknown categories get the general guidance
	general := svc.Tips("styrofoam")
	require.NotEmpty(t, general)
	require.Contains(t, general[0], "local recycling guidelines")
}
