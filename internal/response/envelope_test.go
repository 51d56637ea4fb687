package response

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_RoundTrip(t *testing.T) {
	payload := model.ChatResponse{
		Response: model.ResponseBody{Content: "Desde Cuenta > Suscripción.", Confidence: 0.87, ProcessingTime: 1.234},
		Documents: []model.Document{
			{PageContent: "Para cancelar...", Metadata: map[string]interface{}{"source": "faq.txt"}},
		},
	}
	env := Success(payload)

	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, "application/json", env.Headers["Content-Type"])
	assert.Equal(t, "*", env.Headers["Access-Control-Allow-Origin"])

	var decoded model.ChatResponse
	require.NoError(t, json.Unmarshal([]byte(env.Body), &decoded))
	assert.Equal(t, payload, decoded)
}

func TestError(t *testing.T) {
	env := Error(http.StatusBadRequest, "Message cannot be empty")
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.JSONEq(t, `{"error":"Message cannot be empty"}`, env.Body)
	assert.Len(t, env.Headers, 2)
}

func TestBuild_UnencodablePayload(t *testing.T) {
	env := Success(map[string]float64{"confidence": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	var body model.ErrorBody
	require.NoError(t, json.Unmarshal([]byte(env.Body), &body))
	assert.Contains(t, body.Error, "Failed to encode response")
}

func TestWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Write(c, Error(http.StatusTooManyRequests, "Too many requests"))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
}
