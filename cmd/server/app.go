package main

import (
	"context"
	"errors"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/generation"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/moderation"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/repository"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/retrieval"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/service"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/structure"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/analyzer"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/database"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/embedding"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/es"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/kafka"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/llm"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/storage"
)

// app holds the wired services. Optional backends stay nil when not configured.
type app struct {
	cfg               config.Config
	chatService       service.ChatService
	evaluationService service.EvaluationService
	evaluationRepo    repository.EvaluationRepository
	producer          *kafka.Producer
}

// newApp connects the backends named in cfg and builds the services on top of them.
func newApp(cfg config.Config) (*app, error) {
	if err := es.InitES(cfg.Retrieval, cfg.Embedding.Dimensions); err != nil {
		return nil, err
	}
	if cfg.Database.Redis.Addr != "" {
		database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	}
	if cfg.Database.MySQL.DSN != "" {
		database.InitMySQL(cfg.Database.MySQL.DSN)
	}
	if cfg.MinIO.Endpoint != "" {
		storage.InitMinIO(cfg.MinIO)
	}

	openaiClient := llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	harmful := moderation.NewDetector(
		moderation.NewOpenAIModerator(llm.NewModerationClient(openaiClient, cfg.Moderation.Model)),
		cfg.Moderation.FailClosed,
	)
	structureDetector := structure.NewDetector(analyzer.NewClient(cfg.Analyzer))

	embeddingClient := embedding.NewClient(cfg.Embedding, cfg.LLM)
	prompt, err := generation.LookupPrompt(cfg.LLM.PromptTemplate)
	if err != nil {
		return nil, err
	}
	var answerer generation.Answerer = generation.NewGenerator(
		retrieval.NewESRetriever(embeddingClient, es.ESClient, cfg.Retrieval.IndexName),
		llm.NewChatClient(cfg.LLM),
		prompt,
		cfg.Retrieval.TopK,
	)
	if cfg.Cache.Enabled {
		if database.RDB == nil {
			return nil, errors.New("cache.enabled requires database.redis.addr")
		}
		answerer = generation.NewCachedAnswerer(answerer, repository.NewRedisAnswerCache(database.RDB), cfg.Cache.TTL)
		log.Infof("answer cache enabled, ttl: %s", cfg.Cache.TTL)
	}

	a := &app{cfg: cfg}
	var publisher service.EventPublisher
	if cfg.Kafka.Brokers != "" {
		a.producer = kafka.NewProducer(cfg.Kafka)
		publisher = a.producer
	}

	var reports service.ReportStore
	if storage.MinioClient != nil {
		reports = storage.NewObjectStore(storage.MinioClient, cfg.MinIO.BucketName)
	}
	if database.DB != nil {
		a.evaluationRepo = repository.NewEvaluationRepository(database.DB)
	}

	a.chatService = service.NewChatService(
		harmful,
		structureDetector,
		answerer,
		service.NewWorkerPool(cfg.Orchestrator.MaxConcurrentTasks),
		publisher,
		service.ChatOptionsFromConfig(cfg.Orchestrator),
	)
	a.evaluationService = service.NewEvaluationService(embeddingClient, a.evaluationRepo, reports)
	return a, nil
}

// startConsumer runs the audit consumer when enabled and its backends are available.
func (a *app) startConsumer(ctx context.Context) {
	if !a.cfg.Kafka.Consume {
		return
	}
	if a.cfg.Kafka.Brokers == "" || database.DB == nil || database.RDB == nil {
		log.Warnf("kafka.consume needs kafka brokers, MySQL and Redis, audit consumer not started")
		return
	}
	handler := service.NewChatRecordHandler(repository.NewChatRecordRepository(database.DB))
	go kafka.StartConsumer(ctx, a.cfg.Kafka, handler, kafka.NewRedisAttemptCounter(database.RDB))
}

func (a *app) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			log.Errorf("failed to close kafka producer: %v", err)
		}
	}
	database.CloseRedis()
	database.CloseMySQL()
}
