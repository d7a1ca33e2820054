package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"model-catalog-service/internal/store"
	"model-catalog-service/pkg/logger"
)

// HealthHandler exposes the liveness endpoint.
type HealthHandler struct {
	store *store.Mongo
}

// NewHealthHandler creates a HealthHandler with the connected store handle.
func NewHealthHandler(st *store.Mongo) *HealthHandler {
	return &HealthHandler{store: st}
}

// Health handles the health check endpoint
func (h *HealthHandler) Health(c echo.Context) error {
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	// Check database connection if requested
	if c.QueryParam("check") == "db" {
		if err := h.store.Ping(c.Request().Context()); err != nil {
			logger.FromContext(c).Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, response)
		}
		response["db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}
