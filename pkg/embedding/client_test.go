package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer llm-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req["model"])
		assert.EqualValues(t, 3, req["dimensions"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	c := NewClient(
		config.EmbeddingConfig{Model: "text-embedding-3-small", Dimensions: 3},
		config.LLMConfig{APIKey: "llm-key", BaseURL: server.URL},
	)
	vec, err := c.CreateEmbedding(context.Background(), "hola")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestCreateEmbedding_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[]}`))
	}))
	defer server.Close()

	c := NewClient(config.EmbeddingConfig{APIKey: "k", BaseURL: server.URL, Model: "m"}, config.LLMConfig{})
	_, err := c.CreateEmbedding(context.Background(), "hola")
	assert.Error(t, err)
}
