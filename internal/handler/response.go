package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ecorewards/ecorewards-backend/internal/apperr"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// writeError maps a service error onto the response envelope. Errors
// outside the taxonomy become opaque 500s.
func writeError(c echo.Context, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	case apperr.KindValidation:
		return c.JSON(http.StatusUnprocessableEntity, NewErrorResponse("validation_error", err.Error()))
	case apperr.KindBusinessRule:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("business_rule_violation", err.Error()))
	case apperr.KindExternal:
		return c.JSON(http.StatusBadGateway, NewErrorResponse("external_service_error", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "Internal server error"))
	}
}

func uidFromContext(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func pagination(c echo.Context) (limit, offset int) {
	limit = queryInt(c, "limit", 20)
	offset = queryInt(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
