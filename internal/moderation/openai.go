package moderation

import (
	"context"

	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/llm"
)

type openAIModerator struct {
	client *llm.ModerationClient
}

// NewOpenAIModerator adapts the llm moderation client to Moderator.
func NewOpenAIModerator(client *llm.ModerationClient) Moderator {
	return &openAIModerator{client: client}
}

func (m *openAIModerator) Classify(ctx context.Context, text string) (Classification, error) {
	res, err := m.client.Classify(ctx, text)
	if err != nil {
		return Classification{}, err
	}
	out := Classification{Flagged: res.Flagged, Categories: make([]Category, len(res.Categories))}
	for i, c := range res.Categories {
		out.Categories[i] = Category{Name: c.Name, Flagged: c.Flagged}
	}
	return out, nil
}
