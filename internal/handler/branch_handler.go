package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type BranchHandler struct {
	svc service.BranchService
}

func NewBranchHandler(svc service.BranchService) *BranchHandler {
	return &BranchHandler{svc: svc}
}

type BranchResponse struct {
	ID                 uint64  `json:"id"`
	Name               string  `json:"name"`
	Address            string  `json:"address"`
	City               string  `json:"city"`
	Country            string  `json:"country,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	TotalRecycledItems int     `json:"totalRecycledItems"`
	TotalCarbonReduced float64 `json:"totalCarbonReduced"`
}

func toBranchResponse(b *model.Branch) BranchResponse {
	return BranchResponse{
		ID:                 b.ID,
		Name:               b.Name,
		Address:            b.Address,
		City:               b.City,
		Country:            b.Country,
		Phone:              b.Phone,
		TotalRecycledItems: b.TotalRecycledItems,
		TotalCarbonReduced: b.TotalCarbonReduced,
	}
}

func (h *BranchHandler) List(c echo.Context) error {
	branches, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]BranchResponse, 0, len(branches))
	for i := range branches {
		resp = append(resp, toBranchResponse(&branches[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BranchHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid branch id"))
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toBranchResponse(b))
}
