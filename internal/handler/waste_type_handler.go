package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/model"
	"github.com/ecorewards/ecorewards-backend/internal/service"
)

type WasteTypeHandler struct {
	svc service.WasteTypeService
}

func NewWasteTypeHandler(svc service.WasteTypeService) *WasteTypeHandler {
	return &WasteTypeHandler{svc: svc}
}

type WasteTypeResponse struct {
	ID                uint64  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	Category          string  `json:"category"`
	RecyclingPoints   int     `json:"recyclingPoints"`
	CarbonFootprintKg float64 `json:"carbonFootprintPerKg"`
	Biodegradable     bool    `json:"biodegradable"`
	Instructions      string  `json:"recyclingInstructions,omitempty"`
	BinColor          string  `json:"binColor"`
}

func toWasteTypeResponse(wt *model.WasteType) WasteTypeResponse {
	return WasteTypeResponse{
		ID:                wt.ID,
		Name:              wt.Name,
		Description:       wt.Description,
		Category:          wt.Category,
		RecyclingPoints:   wt.RecyclingPoints,
		CarbonFootprintKg: wt.CarbonFootprintKg,
		Biodegradable:     wt.Biodegradable,
		Instructions:      wt.RecyclingNotes,
		BinColor:          wt.BinColor,
	}
}

func (h *WasteTypeHandler) List(c echo.Context) error {
	types, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]WasteTypeResponse, 0, len(types))
	for i := range types {
		resp = append(resp, toWasteTypeResponse(&types[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *WasteTypeHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid waste type id"))
	}
	wt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toWasteTypeResponse(wt))
}

func (h *WasteTypeHandler) Tips(c echo.Context) error {
	category := c.Param("category")
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category": category,
		"tips":     h.svc.Tips(category),
		"success":  true,
	})
}
