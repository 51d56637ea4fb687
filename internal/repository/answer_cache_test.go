package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAnswer(t *testing.T) {
	res, err := decodeAnswer([]byte(`{"content":"ok","confidence":0.82,"documents":[{"page_content":"x","metadata":{"source":"faq.txt"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Content)
	assert.Equal(t, 0.82, res.Confidence)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "faq.txt", res.Documents[0].Metadata["source"])
	assert.False(t, res.Degraded)

	res, err = decodeAnswer([]byte(`{"content":"ok","confidence":1}`))
	require.NoError(t, err)
	assert.Equal(t, []model.Document{}, res.Documents)

	_, err = decodeAnswer([]byte(`{`))
	assert.Error(t, err)
}

func TestAnswerKey(t *testing.T) {
	assert.Equal(t, "chatbot:answer:abc", answerKey("abc"))
}

func TestRedisAnswerCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewRedisAnswerCache(client)

	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, c.Set(context.Background(), "k", model.GenerationResult{Content: "x"}, time.Minute))
}
