package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"model-catalog-service/internal/catalog"
	"model-catalog-service/internal/middleware"
	"model-catalog-service/prometheus"
)

// PurchaseHandler exposes the purchase record endpoints.
type PurchaseHandler struct {
	svc *catalog.Service
	env string
}

// NewPurchaseHandler creates a PurchaseHandler backed by the catalog service.
func NewPurchaseHandler(svc *catalog.Service, env string) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, env: env}
}

// Mine handles retrieving the purchases made by the authenticated user,
// newest first.
func (h *PurchaseHandler) Mine(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	purchases, err := h.svc.MyPurchases(c.Request().Context(), principal.Email)
	if err != nil {
		return respondServiceError(c, h.env, err, "list")
	}
	prometheus.PurchaseOperationsCounter.WithLabelValues("mine").Inc()
	return respondList(c, len(purchases), purchases)
}

// ByModel handles retrieving the purchases recorded against one model. The
// model itself may already be deleted; the records remain as history.
func (h *PurchaseHandler) ByModel(c echo.Context) error {
	purchases, err := h.svc.PurchasesByModel(c.Request().Context(), c.Param("modelId"))
	if err != nil {
		return respondServiceError(c, h.env, err, "list")
	}
	prometheus.PurchaseOperationsCounter.WithLabelValues("by_model").Inc()
	return respondList(c, len(purchases), purchases)
}

// Stats handles summarizing purchases across every model created by the
// authenticated user.
func (h *PurchaseHandler) Stats(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	stats, err := h.svc.Stats(c.Request().Context(), principal.Email)
	if err != nil {
		return respondServiceError(c, h.env, err, "list")
	}
	prometheus.PurchaseOperationsCounter.WithLabelValues("stats").Inc()
	return respond(c, http.StatusOK, "", stats)
}
