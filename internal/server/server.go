// Package server exposes the question-answering and chat chains over
// HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ragserve/internal/chain"
)

// Config holds server dependencies.
type Config struct {
	Addr   string
	RAG    chain.RAGFunc
	Chat   chain.ChatFunc
	Logger zerolog.Logger
}

// Server is the HTTP front end.
type Server struct {
	addr   string
	rag    chain.RAGFunc
	chat   chain.ChatFunc
	log    zerolog.Logger
	server *http.Server
}

// New creates a server. Both chains are required.
func New(cfg Config) (*Server, error) {
	if cfg.RAG == nil {
		return nil, fmt.Errorf("rag chain is required")
	}
	if cfg.Chat == nil {
		return nil, fmt.Errorf("chat chain is required")
	}

	return &Server{
		addr: cfg.Addr,
		rag:  cfg.RAG,
		chat: cfg.Chat,
		log:  cfg.Logger,
	}, nil
}

// Handler builds the full middleware and route stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/check", s.handleCheck)
	mux.HandleFunc("/generative_ai", s.handleGenerativeAI)
	mux.HandleFunc("/chat", s.handleChat)

	return withLogging(s.log, withCORS(mux))
}

// Start begins serving. It does not block.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	s.log.Info().Str("addr", s.addr).Msg("starting http server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, waiting for in-flight
// requests up to the timeout.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	s.log.Info().Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
