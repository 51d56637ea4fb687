// Package llm provides clients for OpenAI-compatible chat completion and moderation APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/sashabaranov/go-openai"
)

// Completion is a chat completion together with the log-probabilities of its tokens.
// LogProbs is empty when the provider does not report them.
type Completion struct {
	Content  string
	LogProbs []float64
}

// ChatClient generates completions for a single user prompt.
type ChatClient struct {
	cfg    config.LLMConfig
	client *openai.Client
}

// NewOpenAIClient builds a go-openai client for an OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cc)
}

// NewChatClient creates a ChatClient from the llm configuration.
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	log.Infof("[LLMClient] initializing chat client, model: %s, base_url: %s", cfg.Model, cfg.BaseURL)
	return &ChatClient{
		cfg:    cfg,
		client: NewOpenAIClient(cfg.APIKey, cfg.BaseURL),
	}
}

// Complete sends prompt as a user message and asks for token log-probabilities.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		LogProbs: true,
	}
	if c.cfg.Generation.Temperature != 0 {
		req.Temperature = float32(c.cfg.Generation.Temperature)
	}
	if c.cfg.Generation.TopP != 0 {
		req.TopP = float32(c.cfg.Generation.TopP)
	}
	if c.cfg.Generation.MaxTokens != 0 {
		req.MaxTokens = c.cfg.Generation.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	out := Completion{Content: choice.Message.Content}
	if choice.LogProbs != nil {
		out.LogProbs = make([]float64, 0, len(choice.LogProbs.Content))
		for _, lp := range choice.LogProbs.Content {
			out.LogProbs = append(out.LogProbs, lp.LogProb)
		}
	}
	log.Debugf("[LLMClient] completion received, finish_reason: %s, tokens_with_logprobs: %d", choice.FinishReason, len(out.LogProbs))
	return out, nil
}
