package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type RewardHandler struct {
	svc service.RewardService
}

func NewRewardHandler(svc service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

type RewardResponse struct {
	ID                uint64  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Type              string  `json:"type"`
	PointsRequired    int     `json:"pointsRequired"`
	MonetaryValue     float64 `json:"monetaryValue"`
	Currency          string  `json:"currency"`
	RemainingQuantity *int    `json:"remainingQuantity,omitempty"`
	UsageLimitPerUser int     `json:"usageLimitPerUser"`
	Category          string  `json:"category,omitempty"`
	ImageURL          string  `json:"imageUrl,omitempty"`
	IsAvailable       bool    `json:"isAvailable"`
}

func toRewardResponse(r *model.Reward) RewardResponse {
	return RewardResponse{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		Type:              string(r.Type),
		PointsRequired:    r.PointsRequired,
		MonetaryValue:     r.MonetaryValue,
		Currency:          r.Currency,
		RemainingQuantity: r.RemainingQuantity,
		UsageLimitPerUser: r.UsageLimitPerUser,
		Category:          r.Category,
		ImageURL:          r.ImageURL,
		IsAvailable:       r.IsAvailable(),
	}
}

func (h *RewardHandler) Catalog(c echo.Context) error {
	limit, offset := pagination(c)
	f := repository.RewardFilter{
		Category: c.QueryParam("category"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.QueryParam("minPoints"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			f.MinPoints = &v
		}
	}
	if raw := c.QueryParam("maxPoints"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			f.MaxPoints = &v
		}
	}
	rewards, err := h.svc.Catalog(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]RewardResponse, 0, len(rewards))
	for i := range rewards {
		resp = append(resp, toRewardResponse(&rewards[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RewardHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid reward id"))
	}
	reward, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toRewardResponse(reward))
}

type UserRewardResponse struct {
	ID             uint64          `json:"id"`
	RedemptionCode string          `json:"redemptionCode"`
	PointsSpent    int             `json:"pointsSpent"`
	Status         string          `json:"status"`
	QRImageURL     string          `json:"qrCodeUrl,omitempty"`
	UsedAt         *string         `json:"usedAt,omitempty"`
	ExpiresAt      *string         `json:"expiresAt,omitempty"`
	CreatedAt      string          `json:"createdAt"`
	Reward         *RewardResponse `json:"reward,omitempty"`
}

func toUserRewardResponse(ur *model.UserReward) UserRewardResponse {
	resp := UserRewardResponse{
		ID:             ur.ID,
		RedemptionCode: ur.RedemptionCode,
		PointsSpent:    ur.PointsSpent,
		Status:         string(ur.Status),
		QRImageURL:     ur.QRImageURL,
		CreatedAt:      ur.CreatedAt.Format(time.RFC3339),
	}
	if ur.UsedAt != nil {
		val := ur.UsedAt.Format(time.RFC3339)
		resp.UsedAt = &val
	}
	if ur.ExpiresAt != nil {
		val := ur.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &val
	}
	if ur.Reward != nil {
		reward := toRewardResponse(ur.Reward)
		resp.Reward = &reward
	}
	return resp
}

func (h *RewardHandler) Redeem(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		RewardID uint64 `json:"rewardId"`
	}
	if err := c.Bind(&body); err != nil || body.RewardID == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing reward id"))
	}
	ur, err := h.svc.Redeem(c.Request().Context(), uid, body.RewardID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserRewardResponse(ur))
}

func (h *RewardHandler) MyRewards(c echo.Context) error {
	uid := uidFromContext(c)
	limit, offset := pagination(c)
	rewards, err := h.svc.MyRewards(c.Request().Context(), uid, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]UserRewardResponse, 0, len(rewards))
	for i := range rewards {
		resp = append(resp, toUserRewardResponse(&rewards[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RewardHandler) GetMyReward(c echo.Context) error {
	uid := uidFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid reward id"))
	}
	ur, err := h.svc.GetMyReward(c.Request().Context(), uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserRewardResponse(ur))
}

func (h *RewardHandler) Use(c echo.Context) error {
	uid := uidFromContext(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid reward id"))
	}
	var body struct {
		BranchID *uint64 `json:"branchId"`
	}
	_ = c.Bind(&body)

	result, err := h.svc.Use(c.Request().Context(), uid, id, body.BranchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":        "Reward used successfully",
		"redemptionCode": result.RedemptionCode,
		"usedAt":         result.UsedAt.Format(time.RFC3339),
	})
}
