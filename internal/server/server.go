// Package server provides HTTP server setup and configuration.
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sebasr/target-manager/internal/config"
	"github.com/sebasr/target-manager/internal/handlers"
	"github.com/sebasr/target-manager/internal/logging"
	"github.com/sebasr/target-manager/internal/middleware"
	"github.com/sebasr/target-manager/internal/repository"
)

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config      *config.Config
	TargetRepo  repository.TargetRepository
	Logger      *logrus.Logger         // Optional: logs are discarded when nil
	HealthCheck handlers.HealthChecker // Optional: database ping
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) (*gin.Engine, error) {
	// Release mode keeps ANSI colors and debug route dumps out of the output
	gin.SetMode(gin.ReleaseMode)

	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	cfg := deps.Config.Server

	docsHandler, err := handlers.NewDocsHandler()
	if err != nil {
		return nil, err
	}
	version := cfg.Version
	if version == "" {
		version = docsHandler.Version()
	}

	router := gin.New()

	router.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(c),
			"panic":      recovered,
		}).Error("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Error:  "Internal server error",
			Code:   handlers.CodeInternalError,
			Status: http.StatusInternalServerError,
		})
	}))

	// Gin's own access log stays silent; requests are logged through logrus
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(_ gin.LogFormatterParams) string { return "" },
		Output:    io.Discard,
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Encoding", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log, "/health", "/api/v1/health"))
	router.Use(middleware.NewRateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	healthHandler := handlers.NewHealthHandler(version, deps.HealthCheck)
	targetHandler := handlers.NewTargetHandler(deps.TargetRepo, log)

	router.GET("/health", healthHandler.Get)

	api := router.Group("/api")
	{
		api.GET("/openapi.yaml", docsHandler.Spec)
		api.GET("/openapi.json", docsHandler.SpecJSON)
		api.GET("/docs", docsHandler.UI)
	}

	v1 := api.Group("/v1")
	{
		v1.GET("/health", healthHandler.Get)

		targets := v1.Group("/targets")
		{
			targets.GET("", targetHandler.List)
			targets.POST("", targetHandler.Create)
			targets.GET("/:id", targetHandler.Get)
			targets.PUT("/:id", targetHandler.Update)
			targets.DELETE("/:id", targetHandler.Delete)
		}
	}

	return router, nil
}
