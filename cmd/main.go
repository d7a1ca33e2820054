package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-catalog-service/internal/catalog"
	"model-catalog-service/internal/handler"
	mid "model-catalog-service/internal/middleware"
	"model-catalog-service/internal/store"
	"model-catalog-service/pkg/config"
	"model-catalog-service/pkg/identity"
	"model-catalog-service/pkg/logger"
	"model-catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting model-catalog-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize token verifier
	verifier := identity.NewVerifier(&appConfig.Auth)
	log.Info("Token verifier initialized")

	// Connect to the document store
	connectCtx, cancel := context.WithTimeout(context.Background(), appConfig.Mongo.ConnectTimeout)
	st, err := store.Connect(connectCtx, &appConfig.Mongo)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to the document store", zap.Error(err))
	}
	log.Info("Document store connection established",
		zap.String("database", appConfig.Mongo.Database))

	// Wire the service and handlers
	svc := catalog.NewService(st.Models(), st.Purchases(), log)
	modelHandler := handler.NewModelHandler(svc, appConfig.Server.Env)
	purchaseHandler := handler.NewPurchaseHandler(svc, appConfig.Server.Env)
	healthHandler := handler.NewHealthHandler(st)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{appConfig.Server.ClientURL},
		AllowCredentials: true,
	}))
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Root and operational endpoints
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "AI Model Inventory Manager API",
			"version": "1.0.0",
			"endpoints": echo.Map{
				"models":    "/api/v1/models",
				"purchases": "/api/v1/my-purchases",
				"health":    "/health",
			},
		})
	})
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	requireAuth := mid.AuthMiddleware(verifier)
	optionalAuth := mid.OptionalAuthMiddleware(verifier)

	api := e.Group("/api/v1")
	api.GET("/models", modelHandler.List, optionalAuth)
	api.GET("/models/featured", modelHandler.Featured)
	api.GET("/models/:id", modelHandler.Get, requireAuth)
	api.GET("/my-models", modelHandler.Mine, requireAuth)
	api.POST("/add-model", modelHandler.Create, requireAuth)
	api.PUT("/update-model/:id", modelHandler.Update, requireAuth)
	api.DELETE("/delete-model/:id", modelHandler.Delete, requireAuth)
	api.POST("/purchase-model/:id", modelHandler.Purchase, requireAuth)
	api.GET("/purchased-model/:id", modelHandler.PurchaseCount, requireAuth)
	api.POST("/repair-model/:id", modelHandler.Repair, requireAuth)
	api.GET("/my-purchases", purchaseHandler.Mine, requireAuth)
	api.GET("/model-purchases/:modelId", purchaseHandler.ByModel, requireAuth)
	api.GET("/purchase-stats", purchaseHandler.Stats, requireAuth)

	// Start server
	go func() {
		if err := e.Start(":" + appConfig.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error("Store disconnect error", zap.Error(err))
	}
	log.Info("Shutdown complete")
}
