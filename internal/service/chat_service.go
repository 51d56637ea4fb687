// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/config"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/generation"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/moderation"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/response"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/validation"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client-facing messages.
const (
	UnclearQuestionMessage = "Your question is unclear. Could you please rephrase it or provide more details?"
	LowConfidenceMessage   = "I'm not confident enough in my answer. Could you please rephrase your question or provide more context?"
	timedOutMessage        = "request timed out"
)

// RequestError is a failure reported to the client with a specific status.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// HarmfulDetector flags harmful messages. Unavailable is the verdict used when the check
// could not run at all.
type HarmfulDetector interface {
	Detect(ctx context.Context, message string) moderation.Verdict
	Unavailable(err error) moderation.Verdict
}

// StructureDetector flags poorly formed questions.
type StructureDetector interface {
	IsPoorlyFormed(ctx context.Context, message string) bool
}

// EventPublisher receives one audit event per request.
type EventPublisher interface {
	Publish(ctx context.Context, event model.ChatEvent) error
}

// ChatService answers chat requests.
type ChatService interface {
	// ProcessMessage validates body, runs the classifiers and the generator concurrently and
	// returns the reply envelope. It never panics.
	ProcessMessage(ctx context.Context, requestID string, body interface{}) response.Envelope
}

// ChatOptions tune the orchestration.
type ChatOptions struct {
	MinConfidence     float64
	RequestTimeout    time.Duration
	ModerationTimeout time.Duration
	StructureTimeout  time.Duration
	GenerationTimeout time.Duration
}

// ChatOptionsFromConfig maps the orchestrator configuration section.
func ChatOptionsFromConfig(cfg config.OrchestratorConfig) ChatOptions {
	return ChatOptions{
		MinConfidence:     cfg.MinConfidence,
		RequestTimeout:    cfg.RequestTimeout,
		ModerationTimeout: cfg.ModerationTimeout,
		StructureTimeout:  cfg.StructureTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
	}
}

type chatService struct {
	harmful   HarmfulDetector
	structure StructureDetector
	answerer  generation.Answerer
	pool      *WorkerPool
	publisher EventPublisher
	opts      ChatOptions
	tracer    trace.Tracer
}

// NewChatService creates a ChatService. publisher may be nil.
func NewChatService(harmful HarmfulDetector, structure StructureDetector, answerer generation.Answerer, pool *WorkerPool, publisher EventPublisher, opts ChatOptions) ChatService {
	return &chatService{
		harmful:   harmful,
		structure: structure,
		answerer:  answerer,
		pool:      pool,
		publisher: publisher,
		opts:      opts,
		tracer:    otel.Tracer("chatbot-rag/service"),
	}
}

func (s *chatService) ProcessMessage(ctx context.Context, requestID string, body interface{}) (env response.Envelope) {
	start := time.Now()
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx, span := s.tracer.Start(ctx, "chat.process", trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	event := &model.ChatEvent{RequestID: requestID, CreatedAt: start.UTC()}
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("[ChatService] panic while processing message", "request_id", requestID, "panic", r)
			event.Outcome = model.OutcomeInternalError
			event.Reason = fmt.Sprint(r)
			env = response.Error(http.StatusInternalServerError, fmt.Sprint(r))
		}
		s.finish(span, event, env, start)
	}()

	resp, err := s.process(ctx, body, start, event)
	if err == nil {
		return response.Success(resp)
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if event.Outcome == "" {
			event.Outcome = model.OutcomeInternalError
			event.Reason = reqErr.Message
		}
		return response.Error(reqErr.Status, reqErr.Message)
	}
	event.Outcome = model.OutcomeInternalError
	event.Reason = err.Error()
	log.Errorw("[ChatService] failed to process message", "request_id", requestID, "error", err)
	return response.Error(http.StatusInternalServerError, err.Error())
}

// process is the validate, dispatch, resolve sequence. It fills event as it goes.
func (s *chatService) process(ctx context.Context, body interface{}, start time.Time, event *model.ChatEvent) (model.ChatResponse, error) {
	msg, err := validation.ValidateBody(body)
	if err != nil {
		event.Outcome = model.OutcomeInvalidInput
		event.Reason = err.Error()
		var verr *validation.Error
		if errors.As(err, &verr) {
			return model.ChatResponse{}, &RequestError{Status: http.StatusBadRequest, Message: verr.Message}
		}
		return model.ChatResponse{}, err
	}
	text := msg.String()
	event.Message = text
	log.Infof("[ChatService] processing message, request_id: %s, length: %d", event.RequestID, len([]rune(text)))

	reqCtx := ctx
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}
	// Tasks still running when process returns are told to stop.
	scope, release := context.WithCancel(reqCtx)
	defer release()

	// A task that never got a pool slot resolves to the same default as a failed call:
	// moderation per its fail policy, structure as poorly formed, generation as the apology.
	harmfulTask := submit(scope, s.pool, "moderation", s.opts.ModerationTimeout, func(ctx context.Context) moderation.Verdict {
		return s.harmful.Detect(ctx, text)
	}, s.harmful.Unavailable)
	structureTask := submit(scope, s.pool, "structure", s.opts.StructureTimeout, func(ctx context.Context) bool {
		return s.structure.IsPoorlyFormed(ctx, text)
	}, func(error) bool { return true })
	answerTask := submit(scope, s.pool, "generation", s.opts.GenerationTimeout, func(ctx context.Context) model.GenerationResult {
		return s.answerer.Answer(ctx, text)
	}, func(error) model.GenerationResult { return generation.Degraded() })

	poorlyFormed, err := structureTask.await(reqCtx)
	if err != nil {
		return model.ChatResponse{}, awaitError(reqCtx, err)
	}
	if poorlyFormed {
		log.Infof("[ChatService] poorly formed question, request_id: %s", event.RequestID)
		harmfulTask.cancel()
		event.Outcome = model.OutcomeUnclearQuestion
		return model.ChatResponse{}, &RequestError{Status: http.StatusBadRequest, Message: UnclearQuestionMessage}
	}

	verdict, err := harmfulTask.await(reqCtx)
	if err != nil {
		return model.ChatResponse{}, awaitError(reqCtx, err)
	}
	if verdict.Flagged {
		log.Infof("[ChatService] harmful message, cancelling generation, request_id: %s, reason: %s", event.RequestID, verdict.Reason)
		answerTask.cancel()
		event.Outcome = model.OutcomeHarmful
		event.Reason = verdict.Reason
		return model.ChatResponse{}, &RequestError{Status: http.StatusBadRequest, Message: fmt.Sprintf("Message is harmful (%s)", verdict.Reason)}
	}
	event.Reason = verdict.Reason

	result, err := answerTask.await(reqCtx)
	if err != nil {
		return model.ChatResponse{}, awaitError(reqCtx, err)
	}

	content := result.Content
	event.Outcome = model.OutcomeAnswered
	switch {
	case result.Degraded:
		event.Outcome = model.OutcomeDegraded
	case result.Confidence < s.opts.MinConfidence:
		log.Infof("[ChatService] low confidence answer (%.2f), asking for clarification, request_id: %s", result.Confidence, event.RequestID)
		content = LowConfidenceMessage
		event.Outcome = model.OutcomeLowConfidence
	}
	if !result.Degraded {
		metrics.ChatConfidence.Observe(result.Confidence)
	}

	docs := result.Documents
	if docs == nil {
		docs = []model.Document{}
	}
	event.Confidence = result.Confidence
	event.DocumentCount = len(docs)

	return model.ChatResponse{
		Response: model.ResponseBody{
			Content:        content,
			Confidence:     result.Confidence,
			ProcessingTime: time.Since(start).Seconds(),
		},
		Documents: docs,
	}, nil
}

// awaitError maps a failed await to the client-facing error.
func awaitError(reqCtx context.Context, err error) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &RequestError{Status: http.StatusInternalServerError, Message: timedOutMessage}
	}
	return err
}

func (s *chatService) finish(span trace.Span, event *model.ChatEvent, env response.Envelope, start time.Time) {
	elapsed := time.Since(start)
	event.Status = env.StatusCode
	event.ProcessingTime = elapsed.Seconds()

	metrics.ChatRequestsTotal.WithLabelValues(event.Outcome).Inc()
	metrics.ChatProcessingSeconds.Observe(elapsed.Seconds())

	span.SetAttributes(
		attribute.String("chat.outcome", event.Outcome),
		attribute.Int("http.status_code", env.StatusCode),
	)
	if env.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, event.Reason)
	}

	log.Infow("[ChatService] request finished",
		"request_id", event.RequestID,
		"outcome", event.Outcome,
		"status", event.Status,
		"confidence", event.Confidence,
		"documents", event.DocumentCount,
		"latency", elapsed.String(),
	)

	if s.publisher == nil {
		return
	}
	ev := *event
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Warnf("[ChatService] failed to publish chat event %s: %v", ev.RequestID, err)
		}
	}()
}
