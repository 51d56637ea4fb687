// Package pipeline loads reference documents into the retrieval index.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/embedding"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/es"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	ChunkSize    = 1000
	ChunkOverlap = 100
)

// Indexer stores one embedded chunk.
type Indexer interface {
	Index(ctx context.Context, doc model.EsDocument) error
}

// ObjectSource lists and reads documents kept in object storage.
type ObjectSource interface {
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	ReadObject(ctx context.Context, objectName string) ([]byte, error)
}

type esIndexer struct {
	client    *elasticsearch.Client
	indexName string
}

// NewESIndexer indexes chunks into indexName.
func NewESIndexer(client *elasticsearch.Client, indexName string) Indexer {
	return &esIndexer{client: client, indexName: indexName}
}

func (i *esIndexer) Index(ctx context.Context, doc model.EsDocument) error {
	return es.IndexDocument(ctx, i.client, i.indexName, doc)
}

// Processor splits, embeds and indexes reference documents.
type Processor struct {
	embeddingClient embedding.Client
	indexer         Indexer
	modelVersion    string
	splitter        textsplitter.TextSplitter
}

// NewProcessor creates a Processor. modelVersion is stored with every chunk.
func NewProcessor(embeddingClient embedding.Client, indexer Indexer, modelVersion string) *Processor {
	return &Processor{
		embeddingClient: embeddingClient,
		indexer:         indexer,
		modelVersion:    modelVersion,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(ChunkSize),
			textsplitter.WithChunkOverlap(ChunkOverlap),
		),
	}
}

// ProcessFile indexes a local text file under its base name.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) (int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return p.ProcessText(ctx, filepath.Base(filePath), string(data))
}

// ProcessObjects indexes every object under prefix and returns the total number of chunks.
func (p *Processor) ProcessObjects(ctx context.Context, store ObjectSource, prefix string) (int, error) {
	names, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return 0, err
	}
	log.Infof("[Processor] found %d objects under '%s'", len(names), prefix)

	total := 0
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		data, err := store.ReadObject(ctx, name)
		if err != nil {
			return total, err
		}
		n, err := p.ProcessText(ctx, path.Base(name), string(data))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ProcessText splits text into overlapping chunks, embeds each one and indexes it as
// <source>_<chunk>. Re-ingesting a source overwrites its chunks.
func (p *Processor) ProcessText(ctx context.Context, source, text string) (int, error) {
	log.Infof("[Processor] processing '%s', length: %d characters", source, utf8.RuneCountInString(text))
	if strings.TrimSpace(text) == "" {
		log.Warnf("[Processor] '%s' is empty, skipping", source)
		return 0, errors.New("document is empty")
	}

	chunks, err := p.splitter.SplitText(text)
	if err != nil {
		return 0, fmt.Errorf("failed to split %s: %w", source, err)
	}
	log.Infof("[Processor] '%s' split into %d chunks (size %d, overlap %d)", source, len(chunks), ChunkSize, ChunkOverlap)

	for i, chunk := range chunks {
		vector, err := p.embeddingClient.CreateEmbedding(ctx, chunk)
		if err != nil {
			log.Errorf("[Processor] failed to embed chunk %d of '%s': %v", i, source, err)
			return i, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		doc := model.EsDocument{
			VectorID:    fmt.Sprintf("%s_%d", source, i),
			Source:      source,
			ChunkID:     i,
			TextContent: chunk,
			Vector:      vector,
			Model:       p.modelVersion,
			Metadata:    map[string]interface{}{"source": source, "chunk_id": i},
		}
		if err := p.indexer.Index(ctx, doc); err != nil {
			log.Errorf("[Processor] failed to index chunk %d of '%s': %v", i, source, err)
			return i, fmt.Errorf("failed to index chunk %d: %w", i, err)
		}
	}

	log.Infof("[Processor] '%s' indexed", source)
	return len(chunks), nil
}
