package repository

import (
	"palearn_backend/internal/model"

	"gorm.io/gorm"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

func (r *RecommendationRepository) Create(rec *model.Recommendation) error {
	return r.DB.Create(rec).Error
}

func (r *RecommendationRepository) FindByUserID(userID uint, limit int) ([]*model.Recommendation, error) {
	var recs []*model.Recommendation
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&recs).Error
	return recs, err
}
