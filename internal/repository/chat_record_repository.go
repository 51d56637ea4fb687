// Package repository provides the persistence layer.
package repository

import (
	"context"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRecordRepository persists chat audit records.
type ChatRecordRepository interface {
	Create(ctx context.Context, record *model.ChatRecord) error
	FindByRequestID(ctx context.Context, requestID string) (*model.ChatRecord, error)
}

type chatRecordRepository struct {
	db *gorm.DB
}

func NewChatRecordRepository(db *gorm.DB) ChatRecordRepository {
	return &chatRecordRepository{db: db}
}

// Create inserts record. A record whose request id already exists is ignored, so replayed
// events are stored once.
func (r *chatRecordRepository) Create(ctx context.Context, record *model.ChatRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "request_id"}}, DoNothing: true}).
		Create(record).Error
}

func (r *chatRecordRepository) FindByRequestID(ctx context.Context, requestID string) (*model.ChatRecord, error) {
	var record model.ChatRecord
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
