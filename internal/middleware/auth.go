// Package middleware holds the gin middleware of the HTTP server.
package middleware

import (
	"net/http"
	"strings"

	"github.com/Roxana-Vargas/Chatbot-RAG/internal/response"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/log"
	"github.com/Roxana-Vargas/Chatbot-RAG/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid bearer token carrying role. The verified claims are stored
// in the context under "claims".
func AuthMiddleware(jwtManager *token.JWTManager, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, response.Error(http.StatusUnauthorized, "Missing authorization header"))
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abort(c, response.Error(http.StatusUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := jwtManager.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			log.Warnf("[Auth] rejected token: %v", err)
			abort(c, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}
		if claims.Role != role {
			log.Warnf("[Auth] subject '%s' with role '%s' denied, '%s' required", claims.Subject, claims.Role, role)
			abort(c, response.Error(http.StatusForbidden, "Insufficient permissions"))
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

func abort(c *gin.Context, env response.Envelope) {
	response.Write(c, env)
	c.Abort()
}
