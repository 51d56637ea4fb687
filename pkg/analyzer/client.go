// Package analyzer provides a client for the linguistic analysis service.
//
// The service exposes spaCy-style output: POST /parse with {"text", "language"} returns
// part-of-speech tagged tokens with their dependency labels and the noun chunks of the text.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
)

// Token is one word of the analyzed text.
type Token struct {
	Text string `json:"text"`
	POS  string `json:"pos"`
	Dep  string `json:"dep"`
}

// NounChunk is a base noun phrase and the part of speech of its root word.
type NounChunk struct {
	Text    string `json:"text"`
	RootPOS string `json:"root_pos"`
}

// Analysis is the parse of one text.
type Analysis struct {
	Tokens     []Token     `json:"tokens"`
	NounChunks []NounChunk `json:"noun_chunks"`
}

type parseRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Client is the analyzer service client.
type Client struct {
	serverURL  string
	language   string
	httpClient *http.Client
}

// NewClient creates a new analyzer client.
func NewClient(cfg config.AnalyzerConfig) *Client {
	return &Client{
		serverURL:  strings.TrimRight(cfg.URL, "/"),
		language:   cfg.Language,
		httpClient: http.DefaultClient,
	}
}

// Parse analyzes text.
func (c *Client) Parse(ctx context.Context, text string) (*Analysis, error) {
	payload, err := json.Marshal(parseRequest{Text: text, Language: c.language})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analyzer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/parse", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("analyzer returned error [%d]: %s", resp.StatusCode, string(body))
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analyzer response: %w", err)
	}
	return &analysis, nil
}
