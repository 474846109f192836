package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"youthunion-chat/internal/api/handlers"
	"youthunion-chat/internal/api/middleware"
)

// Dependencies are the collaborators behind the HTTP routes.
// Recorder, History and Cache may be nil.
type Dependencies struct {
	Asker          handlers.Asker
	Recorder       handlers.QuestionRecorder
	Intents        handlers.IntentLister
	History        handlers.History
	Cache          handlers.ReadinessChecker
	Logger         middleware.Logger
	RequestTimeout time.Duration
}

// SetupRouter configures and returns a Gin router with all API routes
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(deps.Logger))

	chatHandler := handlers.NewChatHandler(deps.Asker, deps.Recorder, deps.Intents, deps.History, deps.RequestTimeout)
	healthHandler := handlers.NewHealthHandler(deps.Cache)

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat := r.Group("/api/chat")
	{
		chat.POST("/ask", chatHandler.Ask)
		chat.GET("/intents", chatHandler.Intents)
		chat.GET("/history", chatHandler.History)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
