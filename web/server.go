// Package web serves the single-page chat interface and its JSON API over
// one inference backend.
package web

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hallwaylabs/parley/pkg/backend"
	"github.com/hallwaylabs/parley/pkg/backend/ollama"
	"github.com/hallwaylabs/parley/pkg/chat"
	"github.com/hallwaylabs/parley/pkg/session"
)

// errorResponse is the JSON error envelope for API handlers.
type errorResponse struct {
	Error string `json:"error"`
}

// modelBackend is implemented by backends that accept a per-request model
// selection (the local server variant).
type modelBackend interface {
	GenerateWithModel(ctx context.Context, model, prompt string) (string, error)
}

// statusProber is implemented by backends with a reachability probe.
type statusProber interface {
	Status(ctx context.Context) ollama.Status
}

// modelLister is implemented by backends that can enumerate their models.
type modelLister interface {
	Models(ctx context.Context) []string
}

// Server owns the session registry and serves the chat page plus API.
type Server struct {
	config   Config
	backend  backend.Backend
	sessions session.Store
	logger   *zap.Logger
	app      *fiber.App
}

// New creates a chat server in front of the given backend.
func New(config Config, b backend.Backend, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		backend:  b,
		sessions: session.NewMemoryStore(),
		logger:   logger,
		app:      app,
	}

	app.Get("/", s.handleIndex)
	app.Post("/api/chat", s.handleChat)
	app.Post("/api/clear", s.handleClear)
	app.Get("/api/status", s.handleStatus)
	app.Get("/api/models", s.handleModels)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("backend", s.backend.Name()),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// chatRequest is one user submission from the page.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
}

// chatResponse returns the full ordered log after both turns landed.
type chatResponse struct {
	SessionID string      `json:"session_id"`
	Turns     []chat.Turn `json:"turns"`
}

// handleChat appends the user turn, blocks on the backend until a reply or
// error string is available, appends the assistant turn, and returns the
// whole log. Backend failures never surface as HTTP errors here; they land
// in the conversation as the assistant's turn.
func (s *Server) handleChat(c *fiber.Ctx) error {
	start := time.Now()

	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse chat request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "session_id required"})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "message required"})
	}

	log := s.sessions.Log(req.SessionID)
	log.Append(chat.RoleUser, req.Message)

	reply := s.generate(c.Context(), req)
	log.Append(chat.RoleAssistant, reply)

	s.logger.Debug("chat turn complete",
		zap.String("session", req.SessionID),
		zap.Int("log_len", log.Len()),
		zap.Duration("duration", time.Since(start)),
	)

	return c.JSON(chatResponse{SessionID: req.SessionID, Turns: log.Turns()})
}

// generate asks the backend for a reply, honoring a per-request model
// selection when the backend supports one. The result is always a display
// string.
func (s *Server) generate(ctx context.Context, req chatRequest) string {
	if mb, ok := s.backend.(modelBackend); ok && req.Model != "" {
		text, err := mb.GenerateWithModel(ctx, req.Model, req.Message)
		if err != nil {
			return backend.Humanize(s.backend, err)
		}
		return text
	}

	return backend.Reply(ctx, s.backend, req.Message)
}

// clearRequest identifies the session whose log gets discarded.
type clearRequest struct {
	SessionID string `json:"session_id"`
}

// handleClear discards the session's entire log.
func (s *Server) handleClear(c *fiber.Ctx) error {
	var req clearRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "session_id required"})
	}

	s.sessions.Clear(req.SessionID)
	s.logger.Info("conversation cleared", zap.String("session", req.SessionID))

	return c.JSON(chatResponse{SessionID: req.SessionID, Turns: []chat.Turn{}})
}

// statusResponse feeds the sidebar's status display.
type statusResponse struct {
	Backend   string   `json:"backend"`
	Reachable bool     `json:"reachable"`
	State     string   `json:"state"`
	Models    []string `json:"models"`
	Detail    string   `json:"detail,omitempty"`
}

// handleStatus reports backend reachability. Backends without a probe (the
// hosted API) always read as ready.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := statusResponse{
		Backend:   s.backend.Name(),
		Reachable: true,
		State:     "ready",
		Models:    []string{},
	}

	if prober, ok := s.backend.(statusProber); ok {
		st := prober.Status(c.Context())
		resp.Reachable = st.Reachable()
		resp.State = string(st.State)
		if st.Models != nil {
			resp.Models = st.Models
		}
		if st.Err != nil {
			resp.Detail = st.Err.Error()
		}
	}

	return c.JSON(resp)
}

// handleModels lists the backend's available models. The list degrades to
// empty when the backend is unreachable or has no listing.
func (s *Server) handleModels(c *fiber.Ctx) error {
	models := []string{}
	if lister, ok := s.backend.(modelLister); ok {
		if found := lister.Models(c.Context()); found != nil {
			models = found
		}
	}

	return c.JSON(map[string]any{"models": models})
}
