package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecordRepo struct {
	records []*model.ChatRecord
	err     error
}

func (m *memoryRecordRepo) Create(_ context.Context, r *model.ChatRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memoryRecordRepo) FindByRequestID(context.Context, string) (*model.ChatRecord, error) {
	return nil, nil
}

func TestChatRecordHandler_Handle(t *testing.T) {
	repo := &memoryRecordRepo{}
	h := NewChatRecordHandler(repo)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, h.Handle(context.Background(), model.ChatEvent{
		RequestID: "r1", Message: "¿Cómo cancelo mi suscripción?", Outcome: model.OutcomeAnswered,
		Status: 200, Confidence: 0.9, DocumentCount: 2, CreatedAt: created,
	}))
	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "r1", rec.RequestID)
	assert.Equal(t, model.OutcomeAnswered, rec.Outcome)
	assert.Equal(t, 2, rec.DocumentCount)
	assert.Equal(t, created, rec.CreatedAt)
}

func TestChatRecordHandler_SkipsEventsWithoutID(t *testing.T) {
	repo := &memoryRecordRepo{}
	require.NoError(t, NewChatRecordHandler(repo).Handle(context.Background(), model.ChatEvent{}))
	assert.Empty(t, repo.records)
}

func TestChatRecordHandler_RepositoryError(t *testing.T) {
	repo := &memoryRecordRepo{err: errors.New("mysql down")}
	err := NewChatRecordHandler(repo).Handle(context.Background(), model.ChatEvent{RequestID: "r1"})
	assert.ErrorContains(t, err, "mysql down")
}
