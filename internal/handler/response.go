package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"model-catalog-service/internal/catalog"
	"model-catalog-service/pkg/logger"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func respondList(c echo.Context, count int, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// respondServiceError maps a service error to a transport status exactly
// once. action names the attempted mutation for the Forbidden message.
func respondServiceError(c echo.Context, env string, err error, action string) error {
	var validationErr *catalog.ValidationError
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		return respondError(c, http.StatusBadRequest, "Invalid model ID format")
	case errors.As(err, &validationErr):
		return respondError(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, catalog.ErrNoChanges):
		return respondError(c, http.StatusBadRequest, "No changes made to the model")
	case errors.Is(err, catalog.ErrModelNotFound):
		return respondError(c, http.StatusNotFound, "Model not found")
	case errors.Is(err, catalog.ErrNotOwner):
		return respondError(c, http.StatusForbidden, "You are not authorized to "+action+" this model")
	default:
		logger.FromContext(c).Error("store operation failed", zap.Error(err))
		body := Envelope{Success: false, Message: "Internal Server Error"}
		if env == "development" {
			body.Error = err.Error()
		}
		return c.JSON(http.StatusInternalServerError, body)
	}
}
