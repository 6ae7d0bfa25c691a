// Package httpserver exposes the chat service over HTTP: one chat endpoint,
// session deletion, health, and cache statistics.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	cachex "github.com/alessalabs/concierge/agent/cache"
	contractx "github.com/alessalabs/concierge/agent/contract"
	"github.com/alessalabs/concierge/agent/orchestrator"
	sessionx "github.com/alessalabs/concierge/agent/session"
)

const ServiceName = "concierge"

type Config struct {
	Port int    `envconfig:"PORT" split_words:"true" default:"8080"`
	Mode string `envconfig:"MODE" split_words:"true" default:"release"`
}

// ChatService handles one user message end to end.
type ChatService interface {
	HandleMessage(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResult, error)
}

// HTTPServer holds the engine and the dependencies behind the routes.
type HTTPServer struct {
	gin   *gin.Engine
	port  int
	chat  ChatService
	store *sessionx.Store
	cache *cachex.Cache
}

func New(cfg Config, chat ChatService, store *sessionx.Store, cache *cachex.Cache) (*HTTPServer, error) {
	if chat == nil {
		return nil, errors.New("chat service is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if cache == nil {
		return nil, errors.New("cache is required")
	}

	if mode := strings.TrimSpace(cfg.Mode); mode != "" {
		gin.SetMode(mode)
	}
	port := cfg.Port
	if port <= 0 {
		port = 8080
	}

	srv := &HTTPServer{
		gin:   gin.New(),
		port:  port,
		chat:  chat,
		store: store,
		cache: cache,
	}
	srv.mapHandlers()
	return srv, nil
}

func (srv *HTTPServer) mapHandlers() {
	srv.gin.Use(gin.Recovery())
	srv.gin.Use(corsMiddleware())

	srv.gin.GET("/healthz", srv.health)
	srv.gin.GET("/cache/stats", srv.cacheStats)
	srv.gin.POST("/chat", srv.handleChat)
	srv.gin.DELETE("/sessions/:id", srv.deleteSession)
}

func (srv *HTTPServer) Run() error {
	addr := fmt.Sprintf(":%d", srv.port)
	log.Info().Str("addr", addr).Msg("http server listening")
	return srv.gin.Run(addr)
}

// Handler exposes the engine for tests.
func (srv *HTTPServer) Handler() http.Handler {
	return srv.gin
}

type chatPayload struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

func (srv *HTTPServer) handleChat(c *gin.Context) {
	var payload chatPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := srv.chat.HandleMessage(c.Request.Context(), contractx.ChatRequest{
		Text:      payload.Text,
		SessionID: sessionID,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, orchestrator.ErrInvalidMessage), errors.Is(err, orchestrator.ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("session_id", sessionID).Msg("chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (srv *HTTPServer) deleteSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}
	if err := srv.store.Clear(c.Request.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("session clear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "cleared": true})
}

func (srv *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func (srv *HTTPServer) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, srv.cache.Stats())
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
