package app

import (
	"time"

	"palearn_backend/internal/middleware"
	"palearn_backend/pkg/monitoring"
	"palearn_backend/pkg/security"
	"palearn_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) setupMiddlewares() {
	a.Engine.Use(gin.Recovery())
	a.Engine.Use(security.CORS(a.Config.CORS.AllowedOrigins))
	a.Engine.Use(security.Secure())

	if a.Config.RateLimit.MaxRequests > 0 {
		window := time.Duration(a.Config.RateLimit.WindowMinutes) * time.Minute
		a.Engine.Use(security.RateLimiter(a.Config.RateLimit.MaxRequests, window))
	}

	if a.Config.Tracing.Enabled {
		a.Engine.Use(tracing.GinMiddleware())
	}
	a.Engine.Use(monitoring.MetricsMiddleware())
}

func (a *App) setupRoutes() {
	a.Engine.GET("/health", a.controllers.health.Check)
	a.Engine.GET("/metrics", monitoring.PrometheusHandler())
	a.Engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if a.Config.Storage.Type == "local" {
		a.Engine.Static("/uploads", a.Config.Storage.LocalPath)
	}

	api := a.Engine.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", a.controllers.auth.Register)
		auth.POST("/login", a.controllers.auth.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(a.Config))
	{
		users := authed.Group("/users")
		{
			users.GET("/profile", a.controllers.user.Profile)
			users.PUT("/profile", a.controllers.user.UpdateProfile)
			users.POST("/avatar", a.controllers.user.UploadAvatar)
		}

		plans := authed.Group("/plans")
		{
			plans.POST("/generate", a.controllers.plan.Generate)
			plans.GET("", a.controllers.plan.List)
			plans.GET("/current", a.controllers.plan.Current)
			plans.GET("/date/:date", a.controllers.plan.ByDate)
			plans.POST("/task/update", a.controllers.plan.UpdateTask)
			plans.GET("/tasks", a.controllers.plan.Tasks)
			plans.GET("/progress/today", a.controllers.plan.Progress)
			plans.GET("/yesterday_review", a.controllers.plan.YesterdayReview)
			plans.GET("/related_materials", a.controllers.plan.RelatedMaterials)
		}

		quiz := authed.Group("/quiz")
		{
			quiz.POST("/generate", a.controllers.quiz.Generate)
			quiz.POST("/grade", a.controllers.quiz.Grade)
			quiz.GET("/results", a.controllers.quiz.Results)
		}

		recommend := authed.Group("/recommend")
		{
			recommend.POST("", a.controllers.recommend.Recommend)
			recommend.POST("/apply", a.controllers.recommend.Apply)
			recommend.GET("/history", a.controllers.recommend.History)
		}
	}

	// Polled by the frontend loading indicator without a token.
	api.GET("/recommend/search_status", a.controllers.recommend.SearchStatus)
}
