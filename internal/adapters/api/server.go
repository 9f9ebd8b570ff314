package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"Hauler/internal/core"
)

// Server is the HTTP API server for Hauler.
type Server struct {
	port       int
	logger     *log.Logger
	jobManager *core.JobManager
	server     *http.Server
	mux        *http.ServeMux

	// SSE clients
	sseClients   map[chan core.JobUpdateEvent]struct{}
	sseClientsMu sync.Mutex

	// Boundary functions (set via options)
	startCopyFunc func(req StartCopyRequest) (string, error)
	probeFunc     func(dest string) error
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithStartCopyFunc sets the function used to start a copy job.
func WithStartCopyFunc(fn func(req StartCopyRequest) (string, error)) ServerOption {
	return func(s *Server) {
		s.startCopyFunc = fn
	}
}

// WithProbeFunc sets the function used to probe destination writability.
func WithProbeFunc(fn func(dest string) error) ServerOption {
	return func(s *Server) {
		s.probeFunc = fn
	}
}

// NewServer creates a new API server.
func NewServer(port int, logger *log.Logger, jobManager *core.JobManager, opts ...ServerOption) *Server {
	s := &Server{
		port:       port,
		logger:     logger,
		jobManager: jobManager,
		sseClients: make(map[chan core.JobUpdateEvent]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux = http.NewServeMux()

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/jobs/active", s.handleActiveJob)
	s.mux.HandleFunc("/api/events", s.handleSSE)
	s.mux.HandleFunc("/api/copy/start", s.handleStartCopy)
	s.mux.HandleFunc("/api/copy/cancel", s.handleCancelCopy)
	s.mux.HandleFunc("/api/probe", s.handleProbe)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.corsMiddleware(s.loggingMiddleware(s.mux)),
	}

	s.logger.Printf("[API] Starting HTTP server on port %d", s.port)
	return s.server.ListenAndServe()
}

// StartBackground starts the server in a goroutine and shuts it down when ctx
// is cancelled.
func (s *Server) StartBackground(ctx context.Context) {
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("[API] Server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.logger.Printf("[API] Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("[API] Shutdown error: %v", err)
		}
	}()
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("[API] %s %s (took %v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// EmitJobUpdate implements core.JobEventEmitter, broadcasting events to SSE
// clients. Slow clients are skipped, never waited on.
func (s *Server) EmitJobUpdate(event core.JobUpdateEvent) {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			s.logger.Printf("[API] SSE client slow, skipping event")
		}
	}
}

func (s *Server) addSSEClient(ch chan core.JobUpdateEvent) {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()
	s.sseClients[ch] = struct{}{}
	s.logger.Printf("[API] SSE client connected (total: %d)", len(s.sseClients))
}

func (s *Server) removeSSEClient(ch chan core.JobUpdateEvent) {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()
	delete(s.sseClients, ch)
	close(ch)
	s.logger.Printf("[API] SSE client disconnected (total: %d)", len(s.sseClients))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}
