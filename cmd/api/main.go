// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"mtc/internal/adapter/anthropic"
	"mtc/internal/adapter/social"
	"mtc/internal/adapter/storage"
	"mtc/internal/config"
	"mtc/internal/domain/trend"
	"mtc/internal/server"
	"mtc/internal/service/enrich"
	"mtc/internal/service/pipeline"
	"mtc/internal/service/ranking"
)

func main() {
	// Load .env if present; real deployments use the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS, logger)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Close()

	// Corpus source with the cached fast path layered on top
	var corpusSource trend.CorpusProvider
	switch cfg.Pipeline.Source {
	case "google":
		corpusSource = social.NewTrendsClient(social.TrendsConfig{
			BaseURL: cfg.Trends.BaseURL,
			Timeout: cfg.Trends.Timeout,
		}, logger)
	default:
		corpusSource = social.NewRedditClient(social.RedditConfig{
			BaseURL:   cfg.Reddit.BaseURL,
			UserAgent: cfg.Reddit.UserAgent,
			Timeout:   cfg.Reddit.Timeout,
			TimeRange: cfg.Reddit.TimeRange,
		}, logger)
	}
	corpusStore := storage.NewCorpusStore(db)
	cachedCorpus := storage.NewCachedCorpus(corpusSource, corpusStore, cfg.Pipeline.CacheMaxAge, logger)

	// Snippet provider
	twitterClient, err := social.NewTwitterClient(social.TwitterConfig{
		BearerToken:       cfg.Twitter.BearerToken,
		ConsumerKey:       cfg.Twitter.ConsumerKey,
		ConsumerSecret:    cfg.Twitter.ConsumerSecret,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
		Timeout:           cfg.Twitter.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Twitter client", zap.Error(err))
	}

	// Niche profile provider
	claudeClient := anthropic.NewClient(anthropic.Config{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Timeout:   cfg.Anthropic.Timeout,
	}, logger)

	// Scoring and enrichment
	gatePolicy := ranking.GateLenient
	if cfg.Pipeline.StrictCategoryGate {
		gatePolicy = ranking.GateStrict
	}
	scorer := ranking.NewScorer(ranking.DefaultWeights(), gatePolicy)

	enricher := enrich.NewOrchestrator(twitterClient, enrich.Config{
		PerItemTimeout: cfg.Enrich.PerItemTimeout,
		MaxConcurrent:  cfg.Enrich.MaxConcurrent,
		MaxSnippets:    cfg.Enrich.MaxSnippets,
	}, logger)

	matchPipeline := pipeline.New(
		claudeClient,
		cachedCorpus,
		scorer,
		enricher,
		natsConn,
		pipeline.Config{
			CorpusLimit:        cfg.Pipeline.CorpusLimit,
			ViabilityThreshold: cfg.Pipeline.ViabilityThreshold,
			EnrichLimit:        cfg.Pipeline.EnrichLimit,
			FinalLimit:         cfg.Pipeline.FinalLimit,
			Source:             cfg.Pipeline.Source,
			EventsSubject:      cfg.Pipeline.EventsSubject,
		},
		logger,
	)

	// Reddit client for comment narratives, separate from the corpus path
	redditClient := social.NewRedditClient(social.RedditConfig{
		BaseURL:   cfg.Reddit.BaseURL,
		UserAgent: cfg.Reddit.UserAgent,
		Timeout:   cfg.Reddit.Timeout,
		TimeRange: cfg.Reddit.TimeRange,
	}, logger)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		matchPipeline,
		redditClient,
		claudeClient,
		natsConn,
		cfg.Pipeline.EventsSubject,
		logger,
	)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
