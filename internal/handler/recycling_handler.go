package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type RecyclingHandler struct {
	svc service.RecyclingService
}

func NewRecyclingHandler(svc service.RecyclingService) *RecyclingHandler {
	return &RecyclingHandler{svc: svc}
}

type ScanItemResponse struct {
	Name            string `json:"name"`
	WasteTypeName   string `json:"wasteTypeName"`
	Category        string `json:"category"`
	BinColor        string `json:"binColor"`
	Instructions    string `json:"instructions,omitempty"`
	Quantity        int    `json:"quantity"`
	PotentialPoints int    `json:"potentialPoints"`
}

type ScanResponse struct {
	EventID         uint64             `json:"recyclingEventId"`
	EventCode       string             `json:"eventCode"`
	PurchaseCode    string             `json:"purchaseCode"`
	BranchName      string             `json:"branchName,omitempty"`
	TotalAmount     float64            `json:"totalAmount"`
	PotentialPoints int                `json:"potentialPoints"`
	Items           []ScanItemResponse `json:"items"`
	Message         string             `json:"message"`
	Instructions    string             `json:"instructions"`
}

func (h *RecyclingHandler) ScanQR(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		QRData string `json:"qrCodeData"`
	}
	if err := c.Bind(&body); err != nil || body.QRData == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing QR code data"))
	}

	result, err := h.svc.ScanQR(c.Request().Context(), uid, body.QRData)
	if err != nil {
		return writeError(c, err)
	}

	resp := ScanResponse{
		EventID:         result.EventID,
		EventCode:       result.EventCode,
		PurchaseCode:    result.PurchaseCode,
		BranchName:      result.BranchName,
		TotalAmount:     result.TotalAmount,
		PotentialPoints: result.PotentialPoints,
		Items:           make([]ScanItemResponse, 0, len(result.Items)),
		Message:         result.Message,
		Instructions:    result.Instructions,
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, ScanItemResponse{
			Name:            item.Name,
			WasteTypeName:   item.WasteTypeName,
			Category:        item.Category,
			BinColor:        item.BinColor,
			Instructions:    item.Instructions,
			Quantity:        item.Quantity,
			PotentialPoints: item.PotentialPoints,
		})
	}
	return c.JSON(http.StatusCreated, resp)
}

type ItemFeedbackResponse struct {
	Item     string `json:"item"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	BinColor string `json:"binColor,omitempty"`
}

type ValidationResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	PointsEarned  int                    `json:"pointsEarned"`
	AccuracyScore float64                `json:"accuracyScore"`
	Feedback      []ItemFeedbackResponse `json:"feedback"`
	NextSteps     string                 `json:"nextSteps"`
}

func (h *RecyclingHandler) Validate(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		RecyclingEventID uint64 `json:"recyclingEventId"`
		ImageData        string `json:"imageData"`
		ItemsValidation  []struct {
			WasteTypeID           uint64  `json:"wasteTypeId"`
			IsCorrectlyClassified bool    `json:"isCorrectlyClassified"`
			PredictedBin          string  `json:"predictedBin"`
			ConfidenceScore       float64 `json:"confidenceScore"`
		} `json:"itemsValidation"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request body"))
	}
	if body.RecyclingEventID == 0 || body.ImageData == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing event id or image data"))
	}

	verdicts := make([]service.ItemVerdict, 0, len(body.ItemsValidation))
	for _, v := range body.ItemsValidation {
		verdicts = append(verdicts, service.ItemVerdict{
			WasteTypeID:           v.WasteTypeID,
			IsCorrectlyClassified: v.IsCorrectlyClassified,
			PredictedBin:          v.PredictedBin,
			ConfidenceScore:       v.ConfidenceScore,
		})
	}

	result, err := h.svc.Validate(c.Request().Context(), uid, body.RecyclingEventID, body.ImageData, verdicts)
	if err != nil {
		return writeError(c, err)
	}

	resp := ValidationResponse{
		Success:       result.Success,
		Message:       result.Message,
		PointsEarned:  result.PointsEarned,
		AccuracyScore: result.AccuracyScore,
		Feedback:      make([]ItemFeedbackResponse, 0, len(result.Feedback)),
		NextSteps:     result.NextSteps,
	}
	for _, f := range result.Feedback {
		resp.Feedback = append(resp.Feedback, ItemFeedbackResponse{
			Item:     f.Item,
			Status:   f.Status,
			Message:  f.Message,
			BinColor: f.BinColor,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type RecyclingItemResponse struct {
	Name                  string  `json:"name"`
	Quantity              int     `json:"quantity"`
	WeightRecycled        float64 `json:"weightRecycled"`
	IsCorrectlyClassified bool    `json:"isCorrectlyClassified"`
	PredictedBin          string  `json:"predictedBin,omitempty"`
	ConfidenceScore       float64 `json:"confidenceScore"`
	PointsAwarded         int     `json:"pointsAwarded"`
	RejectedReason        string  `json:"rejectedReason,omitempty"`
}

type RecyclingEventResponse struct {
	ID                     uint64                  `json:"id"`
	EventCode              string                  `json:"eventCode"`
	Status                 string                  `json:"status"`
	ValidationStatus       string                  `json:"validationStatus"`
	PointsEarned           int                     `json:"pointsEarned"`
	PointsPotential        int                     `json:"pointsPotential"`
	AccuracyScore          float64                 `json:"accuracyScore"`
	TotalWeightRecycled    float64                 `json:"totalWeightRecycled"`
	CarbonFootprintReduced float64                 `json:"carbonFootprintReduced"`
	QRScannedAt            *string                 `json:"qrScannedAt,omitempty"`
	ValidationCompletedAt  *string                 `json:"validationCompletedAt,omitempty"`
	CreatedAt              string                  `json:"createdAt"`
	Items                  []RecyclingItemResponse `json:"items,omitempty"`
}

func toRecyclingEventResponse(e *model.RecyclingEvent) RecyclingEventResponse {
	resp := RecyclingEventResponse{
		ID:                     e.ID,
		EventCode:              e.EventCode,
		Status:                 string(e.Status),
		ValidationStatus:       string(e.ValidationStatus),
		PointsEarned:           e.PointsEarned,
		PointsPotential:        e.PointsPotential,
		AccuracyScore:          e.AccuracyScore,
		TotalWeightRecycled:    e.TotalWeightRecycled,
		CarbonFootprintReduced: e.CarbonFootprintReduced,
		CreatedAt:              e.CreatedAt.Format(time.RFC3339),
	}
	if e.QRScannedAt != nil {
		val := e.QRScannedAt.Format(time.RFC3339)
		resp.QRScannedAt = &val
	}
	if e.ValidationCompletedAt != nil {
		val := e.ValidationCompletedAt.Format(time.RFC3339)
		resp.ValidationCompletedAt = &val
	}
	for _, item := range e.Items {
		resp.Items = append(resp.Items, RecyclingItemResponse{
			Name:                  item.Name,
			Quantity:              item.Quantity,
			WeightRecycled:        item.WeightRecycled,
			IsCorrectlyClassified: item.IsCorrectlyClassified,
			PredictedBin:          item.PredictedBin,
			ConfidenceScore:       item.ConfidenceScore,
			PointsAwarded:         item.PointsAwarded,
			RejectedReason:        item.RejectedReason,
		})
	}
	return resp
}

func (h *RecyclingHandler) History(c echo.Context) error {
	uid := uidFromContext(c)
	limit, offset := pagination(c)
	events, err := h.svc.History(c.Request().Context(), uid, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]RecyclingEventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, toRecyclingEventResponse(&events[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RecyclingHandler) Get(c echo.Context) error {
	uid := uidFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid event id"))
	}
	event, err := h.svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRecyclingEventResponse(event))
}
