package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/vbonduro/ecoleta/internal/imagestore"
	"github.com/vbonduro/ecoleta/internal/service"
)

const defaultMaxUploadBytes = 10 << 20

type Options struct {
	// PublicURL prefixes the image_url of serialized items and points.
	PublicURL      string
	MaxUploadBytes int64
	AllowedOrigins []string
	// Health is probed by GET /healthz; nil always reports healthy.
	Health func(ctx context.Context) error
}

type Server struct {
	service   *service.PointService
	images    imagestore.ImageStore
	publicURL string
	maxUpload int64
	health    func(ctx context.Context) error
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger
}

func NewServer(svc *service.PointService, images imagestore.ImageStore, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		service:   svc,
		images:    images,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		maxUpload: opts.MaxUploadBytes,
		health:    opts.Health,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUploadBytes
	}
	if s.health == nil {
		s.health = func(context.Context) error { return nil }
	}
	s.registerRoutes()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-ID", "Traceparent"},
		ExposedHeaders: []string{"Location", "X-Request-ID"},
		MaxAge:         600,
	})
	s.handler = tracing(requestLogger(logger, securityHeaders(corsHandler.Handler(s.mux))))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /items", s.handleListItems)
	// Older clients fetch a point's item ids from /items/{id}.
	s.mux.HandleFunc("GET /items/{id}", s.handleListPointItems)
	s.mux.HandleFunc("GET /points", s.handleListPoints)
	s.mux.HandleFunc("POST /points", s.handleCreatePoint)
	s.mux.HandleFunc("GET /points/{id}", s.handleGetPoint)
	s.mux.HandleFunc("DELETE /points/{id}", s.handleDeletePoint)
	s.mux.HandleFunc("GET /points/{id}/items", s.handleListPointItems)
	s.mux.HandleFunc("GET /uploads/{name}", s.handleGetUpload)
	s.mux.HandleFunc("GET /ufs", s.handleListStates)
	s.mux.HandleFunc("GET /ufs/{uf}/cities", s.handleListCities)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
