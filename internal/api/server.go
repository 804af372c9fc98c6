package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dgallion1/speedread/internal/config"
	"github.com/dgallion1/speedread/internal/fetch"
	"github.com/dgallion1/speedread/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Version is reported by the index and health endpoints.
const Version = "1.0.0"

// Server is the HTTP API server for speedread.
type Server struct {
	router   chi.Router
	proc     *pipeline.Processor
	fetcher  *fetch.Client
	schemas  *schemas
	upgrader websocket.Upgrader
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(proc *pipeline.Processor, fetcher *fetch.Client, log *slog.Logger, cfg config.Config) (*Server, error) {
	sc, err := compileSchemas()
	if err != nil {
		return nil, fmt.Errorf("request schemas: %w", err)
	}
	s := &Server{
		proc:    proc,
		fetcher: fetcher,
		schemas: sc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originAllowed(cfg.CORSOrigins),
		},
		log: log,
		cfg: cfg,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS(s.cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "Not Found", "the requested resource was not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "Method Not Allowed", "the method is not allowed for the requested URL", http.StatusMethodNotAllowed)
	})

	// Public endpoints.
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/test", s.handleTest)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/process-text", s.handleProcessText)
		r.Post("/api/process-text/batch", s.handleProcessBatch)
		r.Post("/api/calculate-orp", s.handleCalculateORP)
		r.Post("/api/extract-url", s.handleExtractURL)
		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/upload-pdf", s.handleUpload)
		r.Get("/api/stream", s.handleStream)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

var endpoints = map[string]string{
	"health":        "/health (GET)",
	"process_text":  "/api/process-text (POST)",
	"process_batch": "/api/process-text/batch (POST)",
	"calculate_orp": "/api/calculate-orp (POST)",
	"extract_url":   "/api/extract-url (POST)",
	"upload":        "/api/upload (POST, multipart)",
	"upload_pdf":    "/api/upload-pdf (POST, multipart)",
	"stream":        "/api/stream (GET, websocket)",
	"stats":         "/api/stats (GET)",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "SpeedRead API",
		"version":   Version,
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speedread",
		"version": Version,
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "API is working correctly",
		"endpoints": endpoints,
	})
}
