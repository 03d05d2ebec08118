package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type PurchaseHandler struct {
	svc service.PurchaseService
}

func NewPurchaseHandler(svc service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type PurchaseItemResponse struct {
	ID              uint64  `json:"id"`
	WasteTypeID     uint64  `json:"wasteTypeId"`
	WasteTypeName   string  `json:"wasteTypeName,omitempty"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	EstimatedWeight float64 `json:"estimatedWeight"`
	PotentialPoints int     `json:"potentialPoints"`
}

type PurchaseResponse struct {
	ID                   uint64                 `json:"id"`
	PurchaseCode         string                 `json:"purchaseCode"`
	BranchID             uint64                 `json:"branchId"`
	TotalAmount          float64                `json:"totalAmount"`
	Currency             string                 `json:"currency"`
	EstimatedWasteWeight float64                `json:"estimatedWasteWeight"`
	PotentialPoints      int                    `json:"potentialPoints"`
	QRImageURL           string                 `json:"qrCodeUrl"`
	QRExpiresAt          *string                `json:"qrExpiresAt,omitempty"`
	IsRecycled           bool                   `json:"isRecycled"`
	RecycledAt           *string                `json:"recycledAt,omitempty"`
	CreatedAt            string                 `json:"createdAt"`
	Items                []PurchaseItemResponse `json:"items,omitempty"`
}

func toPurchaseResponse(p *model.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:                   p.ID,
		PurchaseCode:         p.PurchaseCode,
		BranchID:             p.BranchID,
		TotalAmount:          p.TotalAmount,
		Currency:             p.Currency,
		EstimatedWasteWeight: p.EstimatedWasteWeight,
		PotentialPoints:      p.PotentialPoints,
		QRImageURL:           p.QRImageURL,
		IsRecycled:           p.IsRecycled,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
	}
	if p.QRExpiresAt != nil {
		val := p.QRExpiresAt.Format(time.RFC3339)
		resp.QRExpiresAt = &val
	}
	if p.RecycledAt != nil {
		val := p.RecycledAt.Format(time.RFC3339)
		resp.RecycledAt = &val
	}
	for _, item := range p.Items {
		itemResp := PurchaseItemResponse{
			ID:              item.ID,
			WasteTypeID:     item.WasteTypeID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			EstimatedWeight: item.EstimatedWeight,
			PotentialPoints: item.PotentialPoints,
		}
		if item.WasteType != nil {
			itemResp.WasteTypeName = item.WasteType.Name
		}
		resp.Items = append(resp.Items, itemResp)
	}
	return resp
}

func (h *PurchaseHandler) Create(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		BranchID    uint64  `json:"branchId"`
		TotalAmount float64 `json:"totalAmount"`
		Currency    string  `json:"currency"`
		Items       []struct {
			WasteTypeID     uint64  `json:"wasteTypeId"`
			Name            string  `json:"name"`
			Quantity        int     `json:"quantity"`
			EstimatedWeight float64 `json:"estimatedWeight"`
		} `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request body"))
	}

	in := service.CreatePurchaseInput{
		BranchID:    body.BranchID,
		TotalAmount: body.TotalAmount,
		Currency:    body.Currency,
	}
	for _, item := range body.Items {
		in.Items = append(in.Items, service.CreatePurchaseItem{
			WasteTypeID:     item.WasteTypeID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			EstimatedWeight: item.EstimatedWeight,
		})
	}

	p, err := h.svc.Create(c.Request().Context(), uid, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(p))
}

type QRResponse struct {
	PurchaseCode string  `json:"purchaseCode"`
	QRData       string  `json:"qrCodeData"`
	QRImageURL   string  `json:"qrCodeUrl"`
	ExpiresAt    *string `json:"expiresAt,omitempty"`
}

func (h *PurchaseHandler) GetQR(c echo.Context) error {
	uid := uidFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid purchase id"))
	}
	info, err := h.svc.GetQR(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err)
	}
	resp := QRResponse{
		PurchaseCode: info.PurchaseCode,
		QRData:       info.QRData,
		QRImageURL:   info.QRImageURL,
	}
	if info.ExpiresAt != nil {
		val := info.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &val
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PurchaseHandler) Get(c echo.Context) error {
	uid := uidFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid purchase id"))
	}
	p, err := h.svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}

func (h *PurchaseHandler) List(c echo.Context) error {
	uid := uidFromContext(c)
	limit, offset := pagination(c)
	purchases, err := h.svc.List(c.Request().Context(), uid, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		resp = append(resp, toPurchaseResponse(&purchases[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
