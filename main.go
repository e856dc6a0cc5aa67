package main

import (
	"flag"
	"log"

	"palearn_backend/internal/app"
	"palearn_backend/internal/config"
	"palearn_backend/pkg/database"
)

// @title Palearn Backend API
// @version 1.0
// @description Study plan and placement quiz generation service.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	if cfg.MigrateOnly {
		if _, err := database.InitDB(&cfg.Database); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Println("migration completed")
		return
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}
}
