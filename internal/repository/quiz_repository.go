package repository

import (
	"palearn_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateSession(session *model.QuizSession) error {
	return r.DB.Create(session).Error
}

func (r *QuizRepository) FindLatestSession(userID uint) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&session).Error
	return &session, err
}

func (r *QuizRepository) FindSessionByID(id, userID uint) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	return &session, err
}

// CreateResult appends a grading record. Results are never updated.
func (r *QuizRepository) CreateResult(result *model.QuizResult) error {
	return r.DB.Create(result).Error
}

func (r *QuizRepository) FindResultsByUserID(userID uint, limit int) ([]*model.QuizResult, error) {
	var results []*model.QuizResult
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&results).Error
	return results, err
}
