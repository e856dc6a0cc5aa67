package repository

import (
	"palearn_backend/internal/model"

	"gorm.io/gorm"
)

// PlanRepository persists plan documents. Plans are append-only per
// user except for task completion toggles and material enrichment;
// the current plan is the most recently created one.
type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) Create(plan *model.Plan) error {
	return r.DB.Create(plan).Error
}

func (r *PlanRepository) FindByUserID(userID uint) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.DB.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&plans).Error
	return plans, err
}

func (r *PlanRepository) FindCurrent(userID uint) (*model.Plan, error) {
	var plan model.Plan
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&plan).Error
	return &plan, err
}

func (r *PlanRepository) Save(plan *model.Plan) error {
	return r.DB.Save(plan).Error
}
