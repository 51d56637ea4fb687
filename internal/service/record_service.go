package service

import (
	"context"
	"fmt"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/repository"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
)

// ChatRecordHandler stores consumed chat events as audit records.
type ChatRecordHandler struct {
	repo repository.ChatRecordRepository
}

func NewChatRecordHandler(repo repository.ChatRecordRepository) *ChatRecordHandler {
	return &ChatRecordHandler{repo: repo}
}

// Handle persists event. Replays of an already stored request are ignored by the repository.
func (h *ChatRecordHandler) Handle(ctx context.Context, event model.ChatEvent) error {
	if event.RequestID == "" {
		log.Warnf("[ChatRecordHandler] dropping event without request id, outcome: %s", event.Outcome)
		return nil
	}
	if err := h.repo.Create(ctx, model.NewChatRecord(event)); err != nil {
		return fmt.Errorf("failed to save chat record %s: %w", event.RequestID, err)
	}
	log.Infof("[ChatRecordHandler] chat record saved, request_id: %s, outcome: %s", event.RequestID, event.Outcome)
	return nil
}
