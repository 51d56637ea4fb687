// Package handler contains the gin handlers of the HTTP API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/middleware"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/response"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/service"
	"github.com/Roxana-Vargas/Chatbot-RAG/internal/validation"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsReply is one WebSocket reply frame. Body is the envelope body embedded as JSON.
type wsReply struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// ChatHandler serves chat requests over HTTP and WebSocket.
type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		log.Warnf("[ChatHandler] failed to read request body: %v", err)
		response.Write(c, response.Error(http.StatusBadRequest, "Invalid request format"))
		return
	}
	env := h.chatService.ProcessMessage(c.Request.Context(), middleware.GetRequestID(c), validation.ParseBody(raw))
	response.Write(c, env)
}

// Stream handles GET /api/v1/chat/ws. Every text frame is processed as one chat request
// and answered with a single reply frame.
func (h *ChatHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()
	log.Infof("[ChatHandler] WebSocket connection established, client: %s", c.ClientIP())

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("[ChatHandler] failed to read WebSocket message: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		env := h.chatService.ProcessMessage(c.Request.Context(), "", validation.ParseBody(message))
		if err := conn.WriteJSON(wsReply{StatusCode: env.StatusCode, Body: json.RawMessage(env.Body)}); err != nil {
			log.Warnf("[ChatHandler] failed to write WebSocket reply: %v", err)
			return
		}
	}
}
