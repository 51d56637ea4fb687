package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m mapEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		return nil, errors.New("unknown text " + text)
	}
	return v, nil
}

type memoryEvaluationRepo struct {
	mu   sync.Mutex
	rows []*model.Evaluation
	err  error
}

func (r *memoryEvaluationRepo) Create(_ context.Context, e *model.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, e)
	return r.err
}

func (r *memoryEvaluationRepo) FindRecent(context.Context, int) ([]model.Evaluation, error) {
	return nil, nil
}

type memoryReports struct {
	objects map[string]interface{}
}

func (m *memoryReports) PutJSON(_ context.Context, name string, v interface{}) error {
	m.objects[name] = v
	return nil
}

func evaluationVectors() map[string][]float32 {
	return map[string][]float32{
		"q":  {1, 0},
		"gt": {1, 1},
		"a":  {1, 1},
		"c1": {1, 0},
		"c2": {0, 1},
	}
}

func TestEvaluate_Scores(t *testing.T) {
	repo := &memoryEvaluationRepo{}
	reports := &memoryReports{objects: map[string]interface{}{}}
	svc := NewEvaluationService(mapEmbedder{vectors: evaluationVectors()}, repo, reports)

	res, err := svc.Evaluate(context.Background(), model.EvaluationRequest{
		Question: "q", GroundTruth: "gt", Answer: "a", Contexts: []string{"c1", "c2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.Scores.AnswerSimilarity)
	assert.Equal(t, 0.7071, res.Scores.AnswerRelevancy)
	assert.Equal(t, 0.5, res.Scores.ContextRelevancy)
	assert.Equal(t, "q", res.Question)
	assert.NotEmpty(t, res.ID)

	require.Len(t, repo.rows, 1)
	assert.Equal(t, res.ID, repo.rows[0].ID)
	assert.Equal(t, "evaluations/"+res.ID+".json", repo.rows[0].ReportObject)
	assert.Contains(t, reports.objects, "evaluations/"+res.ID+".json")
}

func TestEvaluate_MissingFields(t *testing.T) {
	svc := NewEvaluationService(mapEmbedder{vectors: evaluationVectors()}, nil, nil)

	for name, req := range map[string]model.EvaluationRequest{
		"no question":    {GroundTruth: "gt", Answer: "a", Contexts: []string{"c1"}},
		"no answer":      {Question: "q", GroundTruth: "gt", Contexts: []string{"c1"}},
		"no contexts":    {Question: "q", GroundTruth: "gt", Answer: "a"},
		"empty contexts": {Question: "q", GroundTruth: "gt", Answer: "a", Contexts: []string{}},
	} {
		_, err := svc.Evaluate(context.Background(), req)
		var reqErr *RequestError
		require.True(t, errors.As(err, &reqErr), name)
		assert.Equal(t, http.StatusBadRequest, reqErr.Status, name)
		assert.Equal(t, MissingFieldsMessage, reqErr.Message, name)
	}
}

func TestEvaluate_EmbeddingFailure(t *testing.T) {
	repo := &memoryEvaluationRepo{}
	svc := NewEvaluationService(mapEmbedder{err: errors.New("quota")}, repo, nil)

	_, err := svc.Evaluate(context.Background(), model.EvaluationRequest{
		Question: "q", GroundTruth: "gt", Answer: "a", Contexts: []string{"c1"},
	})
	assert.ErrorContains(t, err, "quota")
	assert.Empty(t, repo.rows)
}

func TestEvaluate_StorageFailureStillReturnsScores(t *testing.T) {
	repo := &memoryEvaluationRepo{err: errors.New("mysql down")}
	svc := NewEvaluationService(mapEmbedder{vectors: evaluationVectors()}, repo, nil)

	res, err := svc.Evaluate(context.Background(), model.EvaluationRequest{
		Question: "q", GroundTruth: "gt", Answer: "a", Contexts: []string{"c1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Scores.ContextRelevancy)
	assert.Equal(t, "", repo.rows[0].ReportObject)
}

func TestCosine(t *testing.T) {
	assert.Equal(t, 0.0, cosine(nil, nil))
	assert.Equal(t, 0.0, cosine([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 2}))
	assert.InDelta(t, -1.0, cosine([]float32{1, 0}, []float32{-2, 0}), 1e-9)
}
