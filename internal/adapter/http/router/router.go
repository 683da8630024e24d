package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/http/handler"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/http/middleware"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

// Deps holds everything the router wires into handlers
type Deps struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Analysis       usecase.AnalysisUsecase
	Gatherer       prometheus.Gatherer
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Setup creates and configures the Gin router
func Setup(deps Deps) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = deps.MaxUploadBytes

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.DB, deps.Redis, deps.Analysis)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	analysisHandler := handler.NewAnalysisHandler(deps.Analysis, deps.MaxUploadBytes)

	// Legacy upload route
	router.POST("/analyze", analysisHandler.AnalyzeLegacy)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", analysisHandler.Analyze)
		v1.GET("/models", analysisHandler.ListModels)

		analyses := v1.Group("/analyses")
		{
			analyses.GET("", analysisHandler.ListAnalyses)
			analyses.GET("/:id", analysisHandler.GetAnalysis)
		}
	}

	return router
}
