package repository

import (
	"context"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"

	"gorm.io/gorm"
)

// EvaluationRepository persists evaluation summaries.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *model.Evaluation) error
	FindRecent(ctx context.Context, limit int) ([]model.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *model.Evaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}

// FindRecent returns the newest evaluations first.
func (r *evaluationRepository) FindRecent(ctx context.Context, limit int) ([]model.Evaluation, error) {
	var evaluations []model.Evaluation
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&evaluations).Error
	return evaluations, err
}
