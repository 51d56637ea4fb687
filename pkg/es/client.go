// Package es provides the Elasticsearch client used for the reference document index.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES initializes ESClient and makes sure the reference index exists with a dense_vector
// field of the given dimensions.
func InitES(cfg config.RetrievalConfig, dims int) error {
	client, err := NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return CreateIndexIfNotExists(context.Background(), client, cfg.IndexName, dims)
}

// NewClient builds a client from the retrieval configuration. Addresses may be comma separated.
func NewClient(cfg config.RetrievalConfig) (*elasticsearch.Client, error) {
	var addrs []string
	for _, a := range strings.Split(cfg.Addresses, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
}

func indexMapping(dims int) string {
	return fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"vector_id": { "type": "keyword" },
				"source": { "type": "keyword" },
				"chunk_id": { "type": "integer" },
				"text_content": { "type": "text", "analyzer": "spanish" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" },
				"metadata": { "type": "object", "enabled": false }
			}
		}
	}`, dims)
}

// CreateIndexIfNotExists creates indexName unless it already exists.
func CreateIndexIfNotExists(ctx context.Context, client *elasticsearch.Client, indexName string, dims int) error {
	res, err := client.Indices.Exists([]string{indexName}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("[ES] failed to check whether index exists: %v", err)
		return err
	}
	res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("[ES] index '%s' already exists", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("[ES] unexpected status checking index '%s': %d", indexName, res.StatusCode)
		return fmt.Errorf("unexpected status checking index: %d", res.StatusCode)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(indexMapping(dims))),
	)
	if err != nil {
		log.Errorf("[ES] failed to create index '%s': %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("[ES] elasticsearch returned an error creating index '%s': %s", indexName, res.String())
		return errors.New("elasticsearch returned an error creating the index")
	}

	log.Infof("[ES] index '%s' created", indexName)
	return nil
}

// IndexDocument indexes a single document chunk.
func IndexDocument(ctx context.Context, client *elasticsearch.Client, indexName string, doc model.EsDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.VectorID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("[ES] failed to index document %s: %s", doc.VectorID, res.String())
		return errors.New("failed to index document")
	}
	return nil
}
