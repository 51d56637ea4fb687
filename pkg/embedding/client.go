// Package embedding provides a client for interacting with embedding models.
package embedding

import (
	"context"
	"fmt"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/llm"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/sashabaranov/go-openai"
)

// Client defines the interface for an embedding client.
type Client interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type openAICompatibleClient struct {
	cfg    config.EmbeddingConfig
	client *openai.Client
}

// NewClient creates an embedding client. Empty api_key/base_url fall back to the llm section.
func NewClient(cfg config.EmbeddingConfig, fallback config.LLMConfig) Client {
	if cfg.APIKey == "" {
		cfg.APIKey = fallback.APIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fallback.BaseURL
	}
	return &openAICompatibleClient{
		cfg:    cfg,
		client: llm.NewOpenAIClient(cfg.APIKey, cfg.BaseURL),
	}
}

// CreateEmbedding returns the vector for text.
func (c *openAICompatibleClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	log.Debugf("[EmbeddingClient] calling embedding api, model: %s, input_len: %d", c.cfg.Model, len(text))
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(c.cfg.Model),
		Dimensions: c.cfg.Dimensions,
	})
	if err != nil {
		log.Errorf("[EmbeddingClient] embedding api call failed, error: %v", err)
		return nil, fmt.Errorf("failed to call embedding api: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		log.Warnf("[EmbeddingClient] embedding api returned an empty vector")
		return nil, fmt.Errorf("received empty embedding from api")
	}
	return resp.Data[0].Embedding, nil
}
