package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"savetrack/internal/service"
	"savetrack/internal/signal"
	"savetrack/internal/storage"
)

// APIResponse is the envelope every endpoint writes.
type APIResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string         `json:"code,omitempty"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// ListData wraps a list payload with its size.
type ListData struct {
	Rows  any `json:"rows"`
	Total int `json:"total"`
}

func dataResponse(c echo.Context, status int, data any) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func successResponse(c echo.Context, data any) error {
	return dataResponse(c, http.StatusOK, data)
}

func createdResponse(c echo.Context, data any) error {
	return dataResponse(c, http.StatusCreated, data)
}

func listResponse(c echo.Context, rows any, total int) error {
	return successResponse(c, ListData{Rows: rows, Total: total})
}

func badRequestResponse(c echo.Context, data any) error {
	return dataResponse(c, http.StatusBadRequest, data)
}

// errorResponse maps domain errors onto status codes.
func errorResponse(c echo.Context, err error) error {
	status := statusFor(err)
	detail := []ValidationError{{Code: codeFor(status), Message: err.Error()}}
	if status == http.StatusInternalServerError {
		detail[0].Message = "Something went wrong"
	}
	return dataResponse(c, status, detail)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, signal.ErrDataUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrStorageFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "ERR_BAD_REQUEST"
	case http.StatusUnprocessableEntity:
		return "ERR_DATA_UNAVAILABLE"
	case http.StatusServiceUnavailable:
		return "ERR_STORAGE"
	default:
		return "ERR_INTERNAL"
	}
}
