package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/namngocngo2210/veo3/internal/http/handlers"
	"github.com/namngocngo2210/veo3/internal/http/middleware"
	"github.com/namngocngo2210/veo3/internal/license"
	"go.uber.org/zap"
)

type Router struct {
	handler *handlers.GenerationHandler
	checker *license.Checker
	logger  *zap.Logger
}

func NewRouter(
	handler *handlers.GenerationHandler,
	checker *license.Checker,
	logger *zap.Logger,
) *Router {
	return &Router{
		handler: handler,
		checker: checker,
		logger:  logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequireJSON())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.handler.HealthCheck)

		generations := v1.Group("/generations")
		generations.Use(middleware.LicenseGate(r.checker))
		{
			generations.POST("", r.handler.SubmitBatch)
			generations.GET("/:id", r.handler.GetJob)
			generations.POST("/:id/cancel", r.handler.CancelJob)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("/:key", r.handler.GetSetting)
			settings.PUT("/:key", r.handler.PutSetting)
		}

		history := v1.Group("/history")
		{
			history.GET("/:tab", r.handler.GetHistory)
			history.POST("/:tab", r.handler.AppendHistory)
			history.DELETE("/:tab", r.handler.ClearHistory)
		}

		licenses := v1.Group("/license")
		{
			licenses.GET("", r.handler.GetLicense)
			licenses.POST("/activate", r.handler.ActivateLicense)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Generation service is running",
		})
	})

	return router
}
