// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the handoff dispatcher as a JSON HTTP API. Every
// client creates its own session and addresses it by ID.
package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/handoff"
)

// Server wires HTTP routes to a shared dispatcher and keeps the session
// registry.
type Server struct {
	dispatcher *handoff.Dispatcher
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*handoff.Session
}

// New constructs a Server. A nil logger uses slog.Default.
func New(d *handoff.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		dispatcher: d,
		logger:     logger,
		sessions:   make(map[string]*handoff.Session),
	}
}

// Router returns a gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches all HTTP routes to the router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", s.healthz)

	api := router.Group("/v1")
	api.GET("/roles", s.listRoles)
	api.POST("/sessions", s.createSession)

	sessionRoutes := api.Group("/sessions/:id")
	sessionRoutes.Use(s.requireSession())
	sessionRoutes.DELETE("", s.deleteSession)
	sessionRoutes.POST("/ask", s.ask)
	sessionRoutes.POST("/smart", s.smart)
	sessionRoutes.POST("/manual", s.manual)
	sessionRoutes.POST("/classic", s.classic)
	sessionRoutes.GET("/history", s.history)
	sessionRoutes.DELETE("/history", s.clearHistory)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	s.logger.Info("server.stopped")
	return nil
}

// Session looks up a registered session.
func (s *Server) Session(id string) (*handoff.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SessionCount reports the number of registered sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) register(sess *handoff.Session) {
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
}

// Remove drops a session from the registry. It reports whether the
// session existed.
func (s *Server) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

const sessionKey = "mentor.session"

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		sess, ok := s.Session(id)
		if !ok {
			writeError(c, errors.NotFound("session", id))
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *handoff.Session {
	return c.MustGet(sessionKey).(*handoff.Session)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "http.request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": core.Manifests()})
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.dispatcher.NewSession()
	s.register(sess)
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID()})
}

func (s *Server) deleteSession(c *gin.Context) {
	id := sessionFrom(c).ID()
	if !s.Remove(id) {
		writeError(c, errors.NotFound("session", id))
		return
	}
	s.logger.InfoContext(c.Request.Context(), "session.deleted", slog.String("session_id", id))
	c.Status(http.StatusNoContent)
}

type inputRequest struct {
	Input string `json:"input"`
}

type manualRequest struct {
	Input   string            `json:"input"`
	Role    string            `json:"role"`
	Context map[string]string `json:"context"`
}

type manualResponse struct {
	Role        core.Role   `json:"role"`
	Response    string      `json:"response"`
	Suggestions []core.Role `json:"suggestions"`
}

// bindInput decodes an inputRequest and rejects blank input.
func bindInput(c *gin.Context) (string, bool) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidArgument("invalid request body"))
		return "", false
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeError(c, errors.InvalidArgument("input is required"))
		return "", false
	}
	return input, true
}

func (s *Server) ask(c *gin.Context) {
	input, ok := bindInput(c)
	if !ok {
		return
	}
	res, err := sessionFrom(c).Process(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) smart(c *gin.Context) {
	input, ok := bindInput(c)
	if !ok {
		return
	}
	res, err := sessionFrom(c).Smart(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) manual(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.InvalidArgument("invalid request body"))
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeError(c, errors.InvalidArgument("input is required"))
		return
	}
	out, err := sessionFrom(c).Manual(c.Request.Context(), input, req.Role, req.Context)
	if err != nil {
		writeError(c, err)
		return
	}
	role := core.Role(req.Role)
	c.JSON(http.StatusOK, manualResponse{
		Role:        role,
		Response:    out,
		Suggestions: core.Suggestions(role),
	})
}

func (s *Server) classic(c *gin.Context) {
	input, ok := bindInput(c)
	if !ok {
		return
	}
	res, err := sessionFrom(c).Classic(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) history(c *gin.Context) {
	sess := sessionFrom(c)
	raw := c.Query("limit")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"interactions": sess.History()})
		return
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(c, errors.InvalidArgument("limit must be a non-negative integer").WithContext("limit", raw))
		return
	}
	c.JSON(http.StatusOK, gin.H{"interactions": sess.Recent(limit)})
}

func (s *Server) clearHistory(c *gin.Context) {
	sessionFrom(c).Clear()
	c.Status(http.StatusNoContent)
}

// writeError maps err onto its status code. Errors outside the catalogue
// become 500.
func writeError(c *gin.Context, err error) {
	me, ok := errors.As(err)
	if !ok {
		me = errors.New(errors.CodeInternal, "internal error", err)
	}
	c.JSON(me.StatusCode, gin.H{"error": me})
}
