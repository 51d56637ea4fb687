// Package retrieval finds the reference documents most relevant to a question.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/embedding"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESRetriever runs a kNN search over the embedded reference chunks, boosted by a BM25 match on
// the normalized question.
type ESRetriever struct {
	embeddingClient embedding.Client
	esClient        *elasticsearch.Client
	indexName       string
}

func NewESRetriever(embeddingClient embedding.Client, esClient *elasticsearch.Client, indexName string) *ESRetriever {
	return &ESRetriever{
		embeddingClient: embeddingClient,
		esClient:        esClient,
		indexName:       indexName,
	}
}

// Retrieve returns up to k documents ordered by relevance.
func (r *ESRetriever) Retrieve(ctx context.Context, query string, k int) ([]model.Document, error) {
	queryVector, err := r.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(queryVector, normalizeQuery(query), k)); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.indexName),
		r.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Errorf("[Retrieval] elasticsearch returned an error, status: %s, body: %s", res.Status(), string(body))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsDocument `json:"_source"`
				Score  float64          `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	docs := make([]model.Document, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		meta := make(map[string]interface{}, len(hit.Source.Metadata)+2)
		for key, v := range hit.Source.Metadata {
			meta[key] = v
		}
		if _, ok := meta["source"]; !ok && hit.Source.Source != "" {
			meta["source"] = hit.Source.Source
		}
		if _, ok := meta["chunk_id"]; !ok {
			meta["chunk_id"] = hit.Source.ChunkID
		}
		docs = append(docs, model.Document{PageContent: hit.Source.TextContent, Metadata: meta})
	}
	log.Debugf("[Retrieval] retrieved %d documents for k=%d", len(docs), k)
	return docs, nil
}

func buildQuery(vector []float32, normalized string, k int) map[string]interface{} {
	q := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": k * 10,
		},
		"_source": map[string]interface{}{"excludes": []string{"vector"}},
		"size":    k,
	}
	if normalized != "" {
		q["query"] = map[string]interface{}{
			"match": map[string]interface{}{
				"text_content": map[string]interface{}{
					"query": normalized,
					"boost": 0.2,
				},
			},
		}
	}
	return q
}

var (
	reDrop  = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reSpace = regexp.MustCompile(`\s+`)
)

// normalizeQuery lower-cases the question and strips punctuation for the keyword match.
func normalizeQuery(q string) string {
	kept := reDrop.ReplaceAllString(strings.ToLower(q), " ")
	return strings.TrimSpace(reSpace.ReplaceAllString(kept, " "))
}
