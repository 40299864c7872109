// Package server provides the HTTP server for reference management, attempt
// scoring and live practice sessions.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/server/api"
	"github.com/ayusman/abhinaya/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	// Evaluator scores attempts; attempt and session routes need it.
	Evaluator api.Evaluator
	Camera    capture.Camera
	Detector  detector.Detector
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		refs := api.NewReferenceHandler(s.config.Store, s.config.Evaluator)
		s.mux.Handle("/api/references", refs)
		s.mux.Handle("/api/references/", refs)
	}

	if s.config.Evaluator != nil {
		s.mux.Handle("/api/session", NewSessionHandler(s.config.Evaluator))
	}

	// Camera preview with the detected skeleton drawn on top
	if s.config.Camera != nil && s.config.Detector != nil {
		s.mux.Handle("/api/preview", NewPreviewHandler(s.config.Camera, s.config.Detector))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth reports liveness, the database schema version when a store
// is attached and whether attempts can be scored.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.start).Round(time.Millisecond).String(),
		Scoring: s.config.Evaluator != nil,
		Preview: s.config.Camera != nil && s.config.Detector != nil,
	}
	if s.config.Store != nil {
		version, dirty, err := s.config.Store.SchemaVersion()
		if err != nil || dirty {
			status.Status = "degraded"
		}
		status.SchemaVersion = &version
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	SchemaVersion *uint  `json:"schema_version,omitempty"`
	Scoring       bool   `json:"scoring"`
	Preview       bool   `json:"preview"`
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
