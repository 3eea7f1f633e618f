package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas de entrevistas.
func NewRouter(logger *zap.Logger, interviewH *InterviewHandler) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	interviews := r.Group("/interviews")
	interviews.POST("", interviewH.Start)
	interviews.GET("/:id", interviewH.Snapshot)
	interviews.POST("/:id/assistant", interviewH.AssistantUtterance)
	interviews.POST("/:id/user", interviewH.UserUtterance)
	interviews.POST("/:id/followup", interviewH.ExpectFollowup)
	interviews.POST("/:id/evaluate", interviewH.Evaluate)
	interviews.POST("/:id/tick", interviewH.Tick)
	interviews.POST("/:id/end", interviewH.End)
	interviews.POST("/:id/reset", interviewH.Reset)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
