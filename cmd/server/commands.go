package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/pipeline"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/embedding"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/es"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/storage"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/token"

	"github.com/spf13/cobra"
)

func runAsk(cmd *cobra.Command, args []string) {
	a, err := newApp(config.Conf)
	if err != nil {
		log.Fatal("failed to initialize application", err)
	}
	defer a.close()

	body := map[string]interface{}{"message": strings.Join(args, " ")}
	env := a.chatService.ProcessMessage(context.Background(), "", body)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(env.Body), "", "  "); err != nil {
		pretty.WriteString(env.Body)
	}
	fmt.Printf("status: %d\n%s\n", env.StatusCode, pretty.String())
}

func runIngest(cmd *cobra.Command, args []string) {
	cfg := config.Conf
	if len(args) == 0 && ingestPrefix == "" {
		log.Fatalf("nothing to ingest: pass files or --prefix")
	}
	if err := es.InitES(cfg.Retrieval, cfg.Embedding.Dimensions); err != nil {
		log.Fatal("failed to initialize elasticsearch", err)
	}

	processor := pipeline.NewProcessor(
		embedding.NewClient(cfg.Embedding, cfg.LLM),
		pipeline.NewESIndexer(es.ESClient, cfg.Retrieval.IndexName),
		cfg.Embedding.Model,
	)
	ctx := context.Background()
	total := 0
	for _, path := range args {
		n, err := processor.ProcessFile(ctx, path)
		if err != nil {
			log.Fatalf("failed to ingest %s: %v", path, err)
		}
		total += n
	}
	if ingestPrefix != "" {
		storage.InitMinIO(cfg.MinIO)
		n, err := processor.ProcessObjects(ctx, storage.NewObjectStore(storage.MinioClient, cfg.MinIO.BucketName), ingestPrefix)
		if err != nil {
			log.Fatalf("failed to ingest objects under %s: %v", ingestPrefix, err)
		}
		total += n
	}
	fmt.Printf("indexed %d chunks into %s\n", total, cfg.Retrieval.IndexName)
}

func runToken(cmd *cobra.Command, args []string) {
	cfg := config.Conf
	tok, err := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpireHours).GenerateToken(tokenSubject, tokenRole)
	if err != nil {
		log.Fatal("failed to issue token", err)
	}
	fmt.Println(tok)
}
