package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/es"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) CreateEmbedding(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

func TestESRetriever_Retrieve(t *testing.T) {
	var searchBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "/reference_documents/_search", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&searchBody))
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_score": 1.9, "_source": {"vector_id":"faq.txt_0","source":"faq.txt","chunk_id":0,
				"text_content":"Para cancelar tu suscripción entra en Cuenta.","metadata":{"source":"faq.txt","chunk_id":0}}},
			{"_score": 1.2, "_source": {"vector_id":"planes.txt_3","source":"planes.txt","chunk_id":3,
				"text_content":"El plan básico cuesta 5 USD."}}
		]}}`))
	}))
	defer server.Close()

	client, err := es.NewClient(config.RetrievalConfig{Addresses: server.URL})
	require.NoError(t, err)

	r := NewESRetriever(fakeEmbedder{vec: []float32{0.1, 0.2}}, client, "reference_documents")
	docs, err := r.Retrieve(context.Background(), "¿Cómo cancelo mi suscripción?", 4)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Para cancelar tu suscripción entra en Cuenta.", docs[0].PageContent)
	assert.Equal(t, "faq.txt", docs[0].Metadata["source"])
	assert.Equal(t, "planes.txt", docs[1].Metadata["source"])
	assert.Equal(t, 3, docs[1].Metadata["chunk_id"])

	knn := searchBody["knn"].(map[string]interface{})
	assert.EqualValues(t, 4, knn["k"])
	assert.EqualValues(t, 40, knn["num_candidates"])
	assert.EqualValues(t, 4, searchBody["size"])
	match := searchBody["query"].(map[string]interface{})["match"].(map[string]interface{})
	assert.Equal(t, "cómo cancelo mi suscripción", match["text_content"].(map[string]interface{})["query"])
}

func TestESRetriever_EmbeddingFailure(t *testing.T) {
	r := NewESRetriever(fakeEmbedder{err: errors.New("quota exceeded")}, nil, "idx")
	_, err := r.Retrieve(context.Background(), "hola mundo", 4)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestESRetriever_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"search_phase_execution_exception"}}`))
	}))
	defer server.Close()

	client, err := es.NewClient(config.RetrievalConfig{Addresses: server.URL})
	require.NoError(t, err)

	r := NewESRetriever(fakeEmbedder{vec: []float32{1}}, client, "idx")
	_, err = r.Retrieve(context.Background(), "hola mundo", 2)
	assert.Error(t, err)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "cuánto cuesta el plan premium", normalizeQuery("¿Cuánto cuesta el plan   Premium?"))
	assert.Equal(t, "", normalizeQuery("¿?"))
}
