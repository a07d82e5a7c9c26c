package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
)

// Server exposes source health and Prometheus metrics over HTTP.
type Server struct {
	router         *mux.Router
	cors           *cors.Cors
	logger         logging.Logger
	httpServer     *http.Server
	invoker        *reliability.Invoker
	metricsHandler http.Handler
}

func NewServer(invoker *reliability.Invoker, logger logging.Logger, metricsHandler http.Handler) *Server {
	router := mux.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Requested-With"},
		AllowCredentials: false,
	})

	s := &Server{
		router:         router,
		cors:           corsHandler,
		logger:         logger,
		invoker:        invoker,
		metricsHandler: metricsHandler,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	handler := NewHandler(s.invoker, s.logger)

	s.router.Use(RequestLogger(s.logger))

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(mux.CORSMethodMiddleware(api)) // For preflight requests

	api.HandleFunc("/health", handler.GetStatus).Methods("GET")
	api.HandleFunc("/health/sources", handler.GetSourcesHealth).Methods("GET")
	api.HandleFunc("/health/sources/{name}", handler.GetSourceHealth).Methods("GET")

	if s.metricsHandler != nil {
		s.router.Handle("/metrics", s.metricsHandler).Methods("GET")
	}
}

// Handler returns the fully wrapped HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s.router)
}

// Start begins serving on the given port and blocks until the listener stops.
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting scanner API server on port %s", port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down scanner API server")
	return s.httpServer.Shutdown(ctx)
}
