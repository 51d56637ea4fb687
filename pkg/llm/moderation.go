package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Category is one moderation category and whether the provider flagged it.
type Category struct {
	Name    string
	Flagged bool
}

// ModerationResult keeps categories in the order the provider reports them.
type ModerationResult struct {
	Flagged    bool
	Categories []Category
}

// ModerationClient calls the moderation endpoint.
type ModerationClient struct {
	client *openai.Client
	model  string
}

func NewModerationClient(client *openai.Client, model string) *ModerationClient {
	return &ModerationClient{client: client, model: model}
}

// Classify moderates text.
func (c *ModerationClient) Classify(ctx context.Context, text string) (ModerationResult, error) {
	resp, err := c.client.Moderations(ctx, openai.ModerationRequest{Input: text, Model: c.model})
	if err != nil {
		return ModerationResult{}, fmt.Errorf("moderation request failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return ModerationResult{}, errors.New("moderation returned no results")
	}

	r := resp.Results[0]
	cats, err := orderedCategories(r.Categories)
	if err != nil {
		return ModerationResult{}, err
	}
	return ModerationResult{Flagged: r.Flagged, Categories: cats}, nil
}

// orderedCategories flattens a struct of boolean categories into a list, keeping field order.
func orderedCategories(v interface{}) ([]Category, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode moderation categories: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, errors.New("moderation categories are not an object")
	}

	var cats []Category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read moderation category: %w", err)
		}
		name, _ := tok.(string)
		var flagged bool
		if err := dec.Decode(&flagged); err != nil {
			return nil, fmt.Errorf("moderation category %q is not a boolean: %w", name, err)
		}
		cats = append(cats, Category{Name: name, Flagged: flagged})
	}
	return cats, nil
}
