// Package generation answers questions from retrieved reference documents.
package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/llm"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/metrics"
)

// ApologyMessage replaces the answer when generation fails.
const ApologyMessage = "Sorry, an error occurred while processing your request."

// Retriever returns the k documents most relevant to query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]model.Document, error)
}

// Completer produces a completion for a rendered prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (llm.Completion, error)
}

// Answerer is anything that can answer a validated message.
type Answerer interface {
	Answer(ctx context.Context, message string) model.GenerationResult
}

// Generator runs retrieve, render, complete and scores the answer.
type Generator struct {
	retriever Retriever
	completer Completer
	prompt    Prompt
	topK      int
}

func NewGenerator(retriever Retriever, completer Completer, prompt Prompt, topK int) *Generator {
	return &Generator{retriever: retriever, completer: completer, prompt: prompt, topK: topK}
}

// Answer never fails; any error yields the degraded apology result.
func (g *Generator) Answer(ctx context.Context, message string) model.GenerationResult {
	res, err := g.answer(ctx, message)
	if err != nil {
		metrics.ClassifierFailuresTotal.WithLabelValues("generation").Inc()
		log.Errorf("[Generation] failed to answer message, error: %v", err)
		return Degraded()
	}
	return res
}

func (g *Generator) answer(ctx context.Context, message string) (model.GenerationResult, error) {
	docs, err := g.retriever.Retrieve(ctx, message, g.topK)
	if err != nil {
		return model.GenerationResult{}, fmt.Errorf("retrieval failed: %w", err)
	}

	prompt, err := g.prompt.Render(joinDocuments(docs), message)
	if err != nil {
		return model.GenerationResult{}, err
	}

	completion, err := g.completer.Complete(ctx, prompt)
	if err != nil {
		return model.GenerationResult{}, err
	}
	if ctx.Err() != nil {
		return model.GenerationResult{}, errors.New("generation cancelled")
	}

	confidence := Confidence(completion.LogProbs)
	log.Infof("[Generation] answer generated, documents: %d, confidence: %.2f", len(docs), confidence)
	if docs == nil {
		docs = []model.Document{}
	}
	return model.GenerationResult{
		Content:    completion.Content,
		Confidence: confidence,
		Documents:  docs,
	}, nil
}

// Degraded is the fallback result for a failed generation.
func Degraded() model.GenerationResult {
	return model.GenerationResult{
		Content:    ApologyMessage,
		Confidence: 0,
		Documents:  []model.Document{},
		Degraded:   true,
	}
}

// Confidence is the mean token probability, exp(logprob), rounded to two decimals. Without
// log-probabilities the confidence is unknown and reported as 1.
func Confidence(logProbs []float64) float64 {
	if len(logProbs) == 0 {
		log.Infof("[Generation] no logprobs returned, unknown confidence, using 1.0")
		return 1.0
	}
	var sum float64
	for _, lp := range logProbs {
		sum += math.Exp(lp)
	}
	return math.Round(sum/float64(len(logProbs))*100) / 100
}

func joinDocuments(docs []model.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.PageContent)
	}
	return strings.Join(parts, "\n\n")
}
