// Package server is a reference completion service for the chat client. It answers
// POST /get_response and multiplexed requests over /ws with text from a Responder.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/elalgpt/internal/protocol"
)

// ErrEmptyMessage is returned for requests whose message is blank
var ErrEmptyMessage = errors.New("message is empty")

// Responder produces the reply to one user message
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

// ResponderFunc adapts a function into a Responder
type ResponderFunc func(ctx context.Context, message string) (string, error)

// Respond implements Responder
func (f ResponderFunc) Respond(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// Echo answers every message with itself
var Echo Responder = ResponderFunc(func(_ context.Context, message string) (string, error) {
	return message, nil
})

// Server represents the completion service
type Server struct {
	responder Responder
	logger    *zap.Logger
	timeout   time.Duration
}

// NewServer creates a new server. A zero timeout leaves responder calls unbounded.
func NewServer(responder Responder, logger *zap.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		responder: responder,
		logger:    logger,
		timeout:   timeout,
	}
}

// RegisterRoutes attaches the completion routes to the router
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, protocol.ErrorResponse{Error: "method not allowed"})
	})

	router.POST(protocol.GetResponsePath, s.getResponse)
	router.GET(protocol.WebSocketPath, s.HandleWebSocket)
}

// Router builds an engine with recovery, request logging and the completion routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.RegisterRoutes(router)
	return router
}

func (s *Server) getResponse(c *gin.Context) {
	var req protocol.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: "invalid request body"})
		return
	}

	reply, err := s.respond(c.Request.Context(), req.Message)
	switch {
	case errors.Is(err, ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, protocol.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Warn("responder failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, protocol.ErrorResponse{Error: "completion failed"})
		return
	}

	c.JSON(http.StatusOK, protocol.NewChatResponse(reply))
}

// respond runs the responder under the server timeout
func (s *Server) respond(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.responder.Respond(ctx, message)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
