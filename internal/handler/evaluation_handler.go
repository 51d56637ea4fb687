package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/repository"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/response"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/service"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/gin-gonic/gin"
)

// EvaluationHandler scores answers and lists past evaluations.
type EvaluationHandler struct {
	evaluationService service.EvaluationService
	repo              repository.EvaluationRepository
}

// NewEvaluationHandler creates an EvaluationHandler. repo may be nil, in which case
// listing is unavailable.
func NewEvaluationHandler(evaluationService service.EvaluationService, repo repository.EvaluationRepository) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService, repo: repo}
}

// Evaluate handles POST /api/v1/evaluations.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req model.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, response.Error(http.StatusBadRequest, "Invalid request format"))
		return
	}

	result, err := h.evaluationService.Evaluate(c.Request.Context(), req)
	if err != nil {
		var reqErr *service.RequestError
		if errors.As(err, &reqErr) {
			response.Write(c, response.Error(reqErr.Status, reqErr.Message))
			return
		}
		log.Errorf("[EvaluationHandler] evaluation failed: %v", err)
		response.Write(c, response.Error(http.StatusInternalServerError, "Evaluation failed"))
		return
	}
	response.Write(c, response.Success(result))
}

// Recent handles GET /api/v1/evaluations?limit=N.
func (h *EvaluationHandler) Recent(c *gin.Context) {
	if h.repo == nil {
		response.Write(c, response.Error(http.StatusNotFound, "Evaluation history is not enabled"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	evaluations, err := h.repo.FindRecent(c.Request.Context(), limit)
	if err != nil {
		log.Errorf("[EvaluationHandler] failed to list evaluations: %v", err)
		response.Write(c, response.Error(http.StatusInternalServerError, "Failed to list evaluations"))
		return
	}
	if evaluations == nil {
		evaluations = []model.Evaluation{}
	}
	response.Write(c, response.Success(evaluations))
}
