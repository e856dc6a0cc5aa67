package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"palearn_backend/internal/config"
	"palearn_backend/internal/controller"
	"palearn_backend/internal/repository"
	"palearn_backend/internal/service"
	"palearn_backend/pkg/database"
	"palearn_backend/pkg/logger"
	"palearn_backend/pkg/monitoring"
	"palearn_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Engine *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client

	controllers controllers
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	plan      *controller.PlanController
	quiz      *controller.QuizController
	recommend *controller.RecommendController
	health    *controller.HealthController
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	monitoring.Init()

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("palearn-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Warn("tracing init failed, continuing without traces", zap.Error(err))
			cfg.Tracing.Enabled = false
		}
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Redis is an optimization, not a dependency; material lookups
	// simply skip the cache without it.
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("redis unavailable, material cache disabled", zap.Error(err))
		rdb = nil
	}

	storage, err := service.NewStorageProvider(cfg.Storage)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	recRepo := repository.NewRecommendationRepository(db)

	ai := service.NewAIService(cfg.AI)
	status := service.NewStatusService()
	materials := service.NewMaterialService(ai, rdb)

	authService := service.NewAuthService(userRepo, cfg)
	userService := service.NewUserService(userRepo, storage)
	planService := service.NewPlanService(planRepo, materials, ai, status)
	quizService := service.NewQuizService(quizRepo, ai)
	recommendService := service.NewRecommendService(recRepo, ai, status)

	app := &App{
		Config: cfg,
		DB:     db,
		RDB:    rdb,
		controllers: controllers{
			auth:      controller.NewAuthController(authService),
			user:      controller.NewUserController(userService),
			plan:      controller.NewPlanController(planService, materials),
			quiz:      controller.NewQuizController(quizService),
			recommend: controller.NewRecommendController(recommendService, planService, status),
			health:    controller.NewHealthController(db, rdb),
		},
	}

	gin.SetMode(cfg.Server.Mode)
	app.Engine = gin.New()
	app.setupMiddlewares()
	app.setupRoutes()

	return app, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Engine,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if a.RDB != nil {
		a.RDB.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
