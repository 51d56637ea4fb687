// Package response builds the transport-neutral reply envelope.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/gin-gonic/gin"
)

// Envelope is a status code, headers and a JSON-encoded body.
type Envelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

// Build serializes payload. A payload that cannot be encoded yields a 500 envelope.
func Build(statusCode int, payload interface{}) Envelope {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("[Response] failed to encode response body, error: %v", err)
		body, _ = json.Marshal(model.ErrorBody{Error: "Failed to encode response: " + err.Error()})
		statusCode = http.StatusInternalServerError
	}
	return Envelope{StatusCode: statusCode, Headers: defaultHeaders(), Body: string(body)}
}

// Success wraps a payload in a 200 envelope.
func Success(payload interface{}) Envelope {
	return Build(http.StatusOK, payload)
}

// Error builds {"error": message} with the given status.
func Error(statusCode int, message string) Envelope {
	return Build(statusCode, model.ErrorBody{Error: message})
}

// Write sends env through gin.
func Write(c *gin.Context, env Envelope) {
	for k, v := range env.Headers {
		c.Header(k, v)
	}
	c.Data(env.StatusCode, env.Headers["Content-Type"], []byte(env.Body))
}
