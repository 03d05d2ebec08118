package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type UserStatsResponse struct {
	TotalEvents         int64   `json:"totalEvents"`
	CompletedEvents     int64   `json:"completedEvents"`
	TotalPointsEarned   int64   `json:"totalPointsEarned"`
	AverageAccuracy     float64 `json:"averageAccuracy"`
	TotalWeightRecycled float64 `json:"totalWeightRecycled"`
	TotalCarbonReduced  float64 `json:"totalCarbonReduced"`
}

type UserProfileResponse struct {
	UID                string            `json:"uid"`
	Email              string            `json:"email"`
	DisplayName        string            `json:"displayName,omitempty"`
	TotalPoints        int               `json:"totalPoints"`
	TotalRecycledItems int               `json:"totalRecycledItems"`
	CarbonReducedKg    float64           `json:"carbonFootprintReduced"`
	Stats              UserStatsResponse `json:"stats"`
}

func (h *UserHandler) Me(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	profile, err := h.svc.Profile(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserProfileResponse{
		UID:                profile.User.UID,
		Email:              profile.User.Email,
		DisplayName:        profile.User.DisplayName,
		TotalPoints:        profile.User.TotalPoints,
		TotalRecycledItems: profile.User.TotalRecycledItems,
		CarbonReducedKg:    profile.User.CarbonReducedKg,
		Stats: UserStatsResponse{
			TotalEvents:         profile.Stats.TotalEvents,
			CompletedEvents:     profile.Stats.CompletedEvents,
			TotalPointsEarned:   profile.Stats.TotalPointsEarned,
			AverageAccuracy:     profile.Stats.AverageAccuracy,
			TotalWeightRecycled: profile.Stats.TotalWeightRecycled,
			TotalCarbonReduced:  profile.Stats.TotalCarbonReduced,
		},
	})
}

func (h *UserHandler) Points(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	user, err := h.svc.Points(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"totalPoints":            user.TotalPoints,
		"totalRecycledItems":     user.TotalRecycledItems,
		"carbonFootprintReduced": user.CarbonReducedKg,
	})
}

func (h *UserHandler) Stats(c echo.Context) error {
	uid := uidFromContext(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	stats, err := h.svc.Stats(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UserStatsResponse{
		TotalEvents:         stats.TotalEvents,
		CompletedEvents:     stats.CompletedEvents,
		TotalPointsEarned:   stats.TotalPointsEarned,
		AverageAccuracy:     stats.AverageAccuracy,
		TotalWeightRecycled: stats.TotalWeightRecycled,
		TotalCarbonReduced:  stats.TotalCarbonReduced,
	})
}
