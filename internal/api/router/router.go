package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luciusscala/hackmitmentra/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	healthHandler := handler.NewHealthHandler(deps)
	r.GET("/health", healthHandler.Health)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	viewHandler := handler.NewViewHandler(deps)
	jobHandler := handler.NewJobHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		views := v1.Group("/views")
		{
			views.GET("/dashboard", viewHandler.Dashboard)
			views.GET("/library", viewHandler.Library)
			views.POST("/:view/retry", viewHandler.Retry)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.GET("/:task_id/play", jobHandler.Play)
			jobs.GET("/:task_id/download", jobHandler.Download)
		}

		if deps.Events != nil {
			eventHandler := handler.NewEventHandler(deps)
			v1.GET("/events", eventHandler.ListEvents)
		}
	}

	return r
}
