// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/kardex"
	"stockledger/internal/domain/reorder"
	"stockledger/internal/domain/reports"
	"stockledger/internal/domain/store"
	"stockledger/internal/domain/valuation"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Kardex    *kardex.Service
	Valuation *valuation.Service
	Reorder   *reorder.Service
	Generator *reorder.Generator
	Exporter  *reports.Exporter
	Catalog   store.CatalogReader
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	kardexHandler := handlers.NewKardexHandler(base, cfg.Kardex, cfg.Catalog, cfg.Exporter)
	valuationHandler := handlers.NewValuationHandler(base, cfg.Valuation, cfg.Exporter)
	reorderHandler := handlers.NewReorderHandler(base, cfg.Reorder, cfg.Generator)

	api := router.Group("/api/v1")
	{
		kardexHandler.RegisterRoutes(api.Group("/kardex"))
		valuationHandler.RegisterRoutes(api.Group("/valuation"))

		reorderGroup := api.Group("/reorder")
		{
			reorderGroup.GET("/scan", reorderHandler.Scan)
			reorderGroup.POST("/alerts", reorderHandler.Alerts)
		}

		requisitions := api.Group("/requisitions")
		{
			requisitions.POST("", reorderHandler.Generate)
			requisitions.GET("/:number", reorderHandler.GetRequisition)
		}
	}

	return router
}
