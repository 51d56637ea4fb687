package moderation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModerator struct {
	result Classification
	err    error
}

func (s stubModerator) Classify(context.Context, string) (Classification, error) {
	return s.result, s.err
}

func TestDetect_NotFlagged(t *testing.T) {
	d := NewDetector(stubModerator{result: Classification{Categories: []Category{{Name: "hate"}}}}, false)
	assert.Equal(t, Verdict{}, d.Detect(context.Background(), "¿Cómo cancelo mi suscripción?"))
}

func TestDetect_ListsEveryFlaggedCategoryInOrder(t *testing.T) {
	d := NewDetector(stubModerator{result: Classification{
		Flagged: true,
		Categories: []Category{
			{Name: "harassment", Flagged: false},
			{Name: "hate", Flagged: true},
			{Name: "self-harm", Flagged: false},
			{Name: "violence", Flagged: true},
		},
	}}, false)

	v := d.Detect(context.Background(), "some hateful and violent text")
	assert.True(t, v.Flagged)
	assert.Equal(t, "Message contains harmful content: hate, violence", v.Reason)
}

func TestDetect_FailOpen(t *testing.T) {
	d := NewDetector(stubModerator{err: errors.New("connection refused")}, false)

	v := d.Detect(context.Background(), "what plans do you offer")
	assert.False(t, v.Flagged)
	assert.Equal(t, "Error checking content moderation: connection refused", v.Reason)
}

func TestDetect_FailClosed(t *testing.T) {
	d := NewDetector(stubModerator{err: errors.New("timeout")}, true)

	v := d.Detect(context.Background(), "what plans do you offer")
	assert.True(t, v.Flagged)
	assert.Equal(t, "Error checking content moderation: timeout", v.Reason)
}

func TestDetector_Unavailable(t *testing.T) {
	err := errors.New("moderation task not started: context deadline exceeded")

	open := NewDetector(stubModerator{}, false).Unavailable(err)
	assert.False(t, open.Flagged)
	assert.Equal(t, "Error checking content moderation: moderation task not started: context deadline exceeded", open.Reason)

	closed := NewDetector(stubModerator{}, true).Unavailable(err)
	assert.True(t, closed.Flagged)
	assert.Equal(t, open.Reason, closed.Reason)
}

func TestOpenAIModerator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"modr-1","model":"m","results":[{"flagged":true,
			"categories":{"violence":true},"category_scores":{"violence":0.97}}]}`))
	}))
	defer server.Close()

	m := NewOpenAIModerator(llm.NewModerationClient(llm.NewOpenAIClient("k", server.URL), "m"))
	v := NewDetector(m, false).Detect(context.Background(), "a violent message here")

	require.True(t, v.Flagged)
	assert.Equal(t, "Message contains harmful content: violence", v.Reason)
}
