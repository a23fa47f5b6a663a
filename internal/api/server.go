// ABOUTME: HTTP JSON API for dashboards, routed with gorilla/mux behind rs/cors.
// ABOUTME: Every handler reads through the shared application service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/harperreed/makeweight/internal/logging"
	"github.com/harperreed/makeweight/internal/service"
)

// Server serves the dashboard API.
type Server struct {
	svc     *service.Service
	logger  *log.Logger
	origins []string
}

// NewServer creates an API server. Empty origins allows any.
func NewServer(svc *service.Service, logger *log.Logger, origins []string) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		svc:     svc,
		logger:  logger.With("component", "api"),
		origins: origins,
	}
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/phase", s.getPhase).Methods(http.MethodGet)
	api.HandleFunc("/targets", s.getTargets).Methods(http.MethodGet)
	api.HandleFunc("/plan", s.getPlan).Methods(http.MethodGet)
	api.HandleFunc("/rates", s.getRates).Methods(http.MethodGet)
	api.HandleFunc("/safety", s.getSafety).Methods(http.MethodGet)
	api.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/logs", s.getLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs", s.createLog).Methods(http.MethodPost)
	api.HandleFunc("/logs/{id}", s.deleteLog).Methods(http.MethodDelete)
	api.HandleFunc("/tracking/{date}", s.getTracking).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(s.loggingMiddleware(r))
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
