package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"model-catalog-service/internal/catalog"
	"model-catalog-service/internal/middleware"
	"model-catalog-service/pkg/logger"
	"model-catalog-service/prometheus"
)

// ModelHandler exposes the model catalog endpoints.
type ModelHandler struct {
	svc *catalog.Service
	env string
}

// NewModelHandler creates a ModelHandler backed by the catalog service.
func NewModelHandler(svc *catalog.Service, env string) *ModelHandler {
	return &ModelHandler{svc: svc, env: env}
}

// List handles retrieving all models with optional search, framework filter,
// sort order and result limit.
func (h *ModelHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	filter := catalog.ListFilter{
		Search:    c.QueryParam("search"),
		Framework: c.QueryParam("framework"),
		Sort:      c.QueryParam("sort"),
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		limit, err := strconv.ParseInt(limitParam, 10, 64)
		if err != nil {
			log.Warn("Invalid limit parameter", zap.String("value", limitParam), zap.Error(err))
		} else {
			filter.Limit = limit
		}
	}

	models, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return respondServiceError(c, h.env, err, "list")
	}

	prometheus.ModelOperationsCounter.WithLabelValues("list").Inc()
	return respondList(c, len(models), models)
}

// Featured handles the fixed-size home page preview of the newest models.
func (h *ModelHandler) Featured(c echo.Context) error {
	models, err := h.svc.Featured(c.Request().Context())
	if err != nil {
		return respondServiceError(c, h.env, err, "list")
	}
	prometheus.ModelOperationsCounter.WithLabelValues("featured").Inc()
	return respondList(c, len(models), models)
}

// Mine handles retrieving the models created by the authenticated user.
func (h *ModelHandler) Mine(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	logger.FromContext(c).Info("Fetching user models", zap.String("email", principal.Email))
	models, err := h.svc.Mine(c.Request().Context(), principal.Email)
	if err != nil {
		return respondServiceError(c, h.env, err, "list")
	}
	prometheus.ModelOperationsCounter.WithLabelValues("mine").Inc()
	return respondList(c, len(models), models)
}

// Get handles retrieving a single model by ID.
func (h *ModelHandler) Get(c echo.Context) error {
	id := c.Param("id")
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, h.env, err, "view")
	}
	prometheus.ModelOperationsCounter.WithLabelValues("get").Inc()
	return respond(c, http.StatusOK, "", m)
}

// Create handles creating a new model owned by the authenticated user.
func (h *ModelHandler) Create(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	var in catalog.ModelInput
	if err := c.Bind(&in); err != nil {
		logger.FromContext(c).Error("Invalid request data", zap.Error(err))
		return respondError(c, http.StatusBadRequest, "Invalid request data")
	}

	m, err := h.svc.Create(c.Request().Context(), principal.Email, in)
	if err != nil {
		return respondServiceError(c, h.env, err, "create")
	}
	prometheus.ModelOperationsCounter.WithLabelValues("create").Inc()
	return respond(c, http.StatusCreated, "Model added successfully", m)
}

// Update handles replacing the fields of a model; only its creator may do so.
func (h *ModelHandler) Update(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	var in catalog.ModelInput
	if err := c.Bind(&in); err != nil {
		logger.FromContext(c).Error("Invalid request data", zap.Error(err))
		return respondError(c, http.StatusBadRequest, "Invalid request data")
	}

	m, err := h.svc.Update(c.Request().Context(), principal.Email, c.Param("id"), in)
	if err != nil {
		return respondServiceError(c, h.env, err, "update")
	}
	prometheus.ModelOperationsCounter.WithLabelValues("update").Inc()
	return respond(c, http.StatusOK, "Model updated successfully", m)
}

// Delete handles removing a model and cascading to its purchase records.
func (h *ModelHandler) Delete(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	if err := h.svc.Delete(c.Request().Context(), principal.Email, c.Param("id")); err != nil {
		return respondServiceError(c, h.env, err, "delete")
	}
	prometheus.ModelOperationsCounter.WithLabelValues("delete").Inc()
	return respond(c, http.StatusOK, "Model deleted successfully", nil)
}

// Purchase handles recording a purchase of the model by the authenticated
// user and returns the model with its updated counter.
func (h *ModelHandler) Purchase(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	m, err := h.svc.Purchase(c.Request().Context(), principal.Email, c.Param("id"))
	if err != nil {
		return respondServiceError(c, h.env, err, "purchase")
	}
	prometheus.PurchaseOperationsCounter.WithLabelValues("purchase").Inc()
	return respond(c, http.StatusOK, "Model purchased successfully", m)
}

// PurchaseCount handles retrieving the number of purchase records for one
// model.
func (h *ModelHandler) PurchaseCount(c echo.Context) error {
	id := c.Param("id")
	count, err := h.svc.PurchaseCount(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, h.env, err, "view")
	}
	prometheus.PurchaseOperationsCounter.WithLabelValues("count").Inc()
	return respond(c, http.StatusOK, "", echo.Map{"modelId": id, "count": count})
}

// Repair recomputes the model's purchase counter from its purchase records.
// Only the creator may trigger a repair.
func (h *ModelHandler) Repair(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Authentication required")
	}

	id := c.Param("id")
	count, err := h.svc.RepairPurchaseCount(c.Request().Context(), principal.Email, id)
	if err != nil {
		return respondServiceError(c, h.env, err, "repair")
	}
	prometheus.PurchaseOperationsCounter.WithLabelValues("repair").Inc()
	return respond(c, http.StatusOK, "Purchase counter repaired", echo.Map{"modelId": id, "purchased": count})
}
