// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"mtc/internal/adapter/anthropic"
	"mtc/internal/adapter/social"
	"mtc/internal/config"
	"mtc/internal/server/handlers"
	"mtc/internal/service/pipeline"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	matchPipeline *pipeline.Pipeline,
	redditClient *social.RedditClient,
	claudeClient *anthropic.Client,
	natsConn *nats.Conn,
	eventsSubject string,
	logger *zap.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	matchHandler := handlers.NewMatchHandler(matchPipeline, logger)
	narrativeHandler := handlers.NewNarrativeHandler(redditClient, claudeClient, logger)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Route("/trends", func(r chi.Router) {
				r.Post("/match", matchHandler.Match)
				r.Get("/match", matchHandler.MatchQuery)
				r.Get("/narratives", narrativeHandler.Narratives)
			})
		})
	})

	// WebSocket endpoint streaming completed ranking passes
	if natsConn != nil {
		router.Get("/ws/results", handlers.ResultsWebSocketHandler(natsConn, eventsSubject, logger))
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
