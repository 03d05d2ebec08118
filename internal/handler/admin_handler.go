package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type BranchRankingResponse struct {
	Rank               int     `json:"rank"`
	BranchID           uint64  `json:"branchId"`
	BranchName         string  `json:"branchName"`
	BranchCity         string  `json:"branchCity"`
	TotalRecycledItems int     `json:"totalRecycledItems"`
	TotalCarbonReduced float64 `json:"totalCarbonReduced"`
}

type UserRankingResponse struct {
	Rank               int     `json:"rank"`
	UserUID            string  `json:"userUid"`
	DisplayName        string  `json:"displayName,omitempty"`
	TotalPoints        int     `json:"totalPoints"`
	TotalRecycledItems int     `json:"totalRecycledItems"`
	CarbonReducedKg    float64 `json:"carbonFootprintReduced"`
}

type DashboardResponse struct {
	TotalRecyclingEvents int64                   `json:"totalRecyclingEvents"`
	TotalWeightRecycled  float64                 `json:"totalWeightRecycled"`
	TotalCarbonReduced   float64                 `json:"totalCarbonReduced"`
	TotalPointsAwarded   int64                   `json:"totalPointsAwarded"`
	AverageAccuracy      float64                 `json:"averageAccuracy"`
	ActiveUsers          int64                   `json:"activeUsers"`
	TotalBranches        int64                   `json:"totalBranches"`
	TopBranches          []BranchRankingResponse `json:"topBranches"`
	TopUsers             []UserRankingResponse   `json:"topUsers"`
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	dash, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	resp := DashboardResponse{
		TotalRecyclingEvents: dash.Overview.TotalEvents,
		TotalWeightRecycled:  dash.Overview.TotalWeightRecycled,
		TotalCarbonReduced:   dash.Overview.TotalCarbonReduced,
		TotalPointsAwarded:   dash.Overview.TotalPointsEarned,
		AverageAccuracy:      dash.Overview.AverageAccuracy,
		ActiveUsers:          dash.ActiveUsers,
		TotalBranches:        dash.TotalBranches,
		TopBranches:          make([]BranchRankingResponse, 0, len(dash.TopBranches)),
		TopUsers:             make([]UserRankingResponse, 0, len(dash.TopUsers)),
	}
	for _, r := range dash.TopBranches {
		resp.TopBranches = append(resp.TopBranches, BranchRankingResponse{
			Rank:               r.Rank,
			BranchID:           r.Branch.ID,
			BranchName:         r.Branch.Name,
			BranchCity:         r.Branch.City,
			TotalRecycledItems: r.Branch.TotalRecycledItems,
			TotalCarbonReduced: r.Branch.TotalCarbonReduced,
		})
	}
	for _, r := range dash.TopUsers {
		resp.TopUsers = append(resp.TopUsers, UserRankingResponse{
			Rank:               r.Rank,
			UserUID:            r.User.UID,
			DisplayName:        r.User.DisplayName,
			TotalPoints:        r.User.TotalPoints,
			TotalRecycledItems: r.User.TotalRecycledItems,
			CarbonReducedKg:    r.User.CarbonReducedKg,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
