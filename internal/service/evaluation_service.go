package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/repository"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/embedding"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MissingFieldsMessage is returned when an evaluation request is incomplete.
const MissingFieldsMessage = "Missing required fields"

// ReportStore archives evaluation reports.
type ReportStore interface {
	PutJSON(ctx context.Context, objectName string, v interface{}) error
}

// EvaluationService scores an answer against its ground truth and retrieved contexts.
type EvaluationService interface {
	Evaluate(ctx context.Context, req model.EvaluationRequest) (*model.EvaluationResult, error)
}

type evaluationService struct {
	embeddingClient embedding.Client
	repo            repository.EvaluationRepository
	reports         ReportStore
	validate        *validator.Validate
}

// NewEvaluationService creates an EvaluationService. repo and reports may be nil, in which
// case results are only returned.
func NewEvaluationService(embeddingClient embedding.Client, repo repository.EvaluationRepository, reports ReportStore) EvaluationService {
	return &evaluationService{
		embeddingClient: embeddingClient,
		repo:            repo,
		reports:         reports,
		validate:        validator.New(),
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, req model.EvaluationRequest) (*model.EvaluationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, &RequestError{Status: http.StatusBadRequest, Message: MissingFieldsMessage}
		}
		return nil, err
	}

	texts := append([]string{req.Question, req.GroundTruth, req.Answer}, req.Contexts...)
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, text := range texts {
		g.Go(func() error {
			v, err := s.embeddingClient.CreateEmbedding(gctx, text)
			if err != nil {
				return fmt.Errorf("failed to embed evaluation text %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	question, groundTruth, answer := vectors[0], vectors[1], vectors[2]
	var contextSum float64
	for _, c := range vectors[3:] {
		contextSum += cosine(question, c)
	}

	result := &model.EvaluationResult{
		ID:       uuid.NewString(),
		Question: req.Question,
		Scores: model.EvaluationScores{
			AnswerSimilarity: round4(cosine(answer, groundTruth)),
			AnswerRelevancy:  round4(cosine(question, answer)),
			ContextRelevancy: round4(contextSum / float64(len(req.Contexts))),
		},
		EvaluatedAt: time.Now().UTC(),
	}
	log.Infof("[EvaluationService] evaluation %s scored: %+v", result.ID, result.Scores)
	s.store(ctx, result)
	return result, nil
}

// store archives the report and the summary row. Failures are logged; the scores are still
// returned to the caller.
func (s *evaluationService) store(ctx context.Context, result *model.EvaluationResult) {
	var reportObject string
	if s.reports != nil {
		name := fmt.Sprintf("evaluations/%s.json", result.ID)
		if err := s.reports.PutJSON(ctx, name, result); err != nil {
			log.Warnf("[EvaluationService] failed to archive report %s: %v", result.ID, err)
		} else {
			reportObject = name
		}
	}
	if s.repo != nil {
		row := &model.Evaluation{
			ID:               result.ID,
			Question:         result.Question,
			AnswerSimilarity: result.Scores.AnswerSimilarity,
			AnswerRelevancy:  result.Scores.AnswerRelevancy,
			ContextRelevancy: result.Scores.ContextRelevancy,
			ReportObject:     reportObject,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			log.Warnf("[EvaluationService] failed to save evaluation %s: %v", result.ID, err)
		}
	}
}

// cosine returns 0 when either vector is empty, zero or the lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
