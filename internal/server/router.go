// Package server exposes the session operations over HTTP.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	{
		api.GET("/users/:id/questions/next", h.NextQuestion)
		api.POST("/users/:id/assessments", h.SubmitAssessment)
		api.POST("/users/:id/sessions", h.SubmitPractice)
		api.POST("/users/:id/micro-tokens", h.MicroTokens)
		api.GET("/users/:id/mastery/:operator", h.Mastery)
		api.POST("/users/:id/seen/:operator/reset", h.ResetSeen)
	}

	return router
}

// requestLogger emits one structured line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
