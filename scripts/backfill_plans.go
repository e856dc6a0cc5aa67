// Manual plan backfill script.
//
// Older plans may carry tasks without identifiers or materials if they
// were imported from outside the generation pipeline. The pipeline
// handles this at generation time; this script repairs what is already
// stored. Run it once after a bulk import.
//
// Usage: go run scripts/backfill_plans.go
package main

import (
	"log"
	"time"

	"palearn_backend/internal/config"
	"palearn_backend/internal/model"
	"palearn_backend/internal/repository"
	"palearn_backend/internal/service"
	"palearn_backend/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	planRepo := repository.NewPlanRepository(db)

	var plans []*model.Plan
	if err := db.Find(&plans).Error; err != nil {
		log.Fatalf("failed to load plans: %v", err)
	}

	repaired := 0
	for _, plan := range plans {
		start, err := time.Parse(model.DateLayout, plan.StartDate)
		if err != nil {
			log.Printf("plan %d has unparseable start date %q, skipped", plan.ID, plan.StartDate)
			continue
		}

		schedule := service.RepairSchedule(plan.DailySchedule, start, plan.RestDays)
		for di := range schedule {
			for ti := range schedule[di].Tasks {
				task := &schedule[di].Tasks[ti]
				if len(task.RelatedMaterials) == 0 {
					task.RelatedMaterials = service.FallbackMaterials(task.Title)
				}
				if len(task.ReviewMaterials) == 0 {
					task.ReviewMaterials = task.RelatedMaterials
				}
			}
		}

		plan.DailySchedule = schedule
		if err := planRepo.Save(plan); err != nil {
			log.Printf("failed to save plan %d: %v", plan.ID, err)
			continue
		}
		repaired++
	}

	log.Printf("backfill completed: %d/%d plans updated", repaired, len(plans))
}
