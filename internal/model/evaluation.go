package model

import "time"

// EvaluationRequest is the body of an evaluation call.
type EvaluationRequest struct {
	Question    string   `json:"question" validate:"required"`
	GroundTruth string   `json:"ground_truth" validate:"required"`
	Answer      string   `json:"answer" validate:"required"`
	Contexts    []string `json:"contexts" validate:"required,min=1,dive,required"`
}

// EvaluationScores are cosine similarities in [-1,1] rounded to 4 decimals.
type EvaluationScores struct {
	AnswerSimilarity float64 `json:"answer_similarity"`
	AnswerRelevancy  float64 `json:"answer_relevancy"`
	ContextRelevancy float64 `json:"context_relevancy"`
}

// EvaluationResult is returned to the caller and archived as a report.
type EvaluationResult struct {
	ID          string           `json:"id"`
	Question    string           `json:"question"`
	Scores      EvaluationScores `json:"scores"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// Evaluation is the persisted summary of an EvaluationResult.
type Evaluation struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Question         string    `gorm:"type:text;not null" json:"question"`
	AnswerSimilarity float64   `json:"answerSimilarity"`
	AnswerRelevancy  float64   `json:"answerRelevancy"`
	ContextRelevancy float64   `json:"contextRelevancy"`
	ReportObject     string    `gorm:"type:varchar(255)" json:"reportObject"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
