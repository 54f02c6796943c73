// Package main is the entry point for the intake server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/cache"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/channel"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/config"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/dispatch"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/flow"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/handler"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/intent"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/lifecycle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/middleware"
	natsclient "github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/nats"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/oracle"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/place"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/session"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/splitter"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/store"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/internal/turn"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/logger"
	"github.com/GUSTAVOPERALTA2/Insignia-sub001/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting intake server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "insignia-intake", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	// Ensure JetStream stream exists
	streamManager := natsclient.NewStreamManager(natsClient)
	if err := streamManager.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the classification oracle. Without an API key the pipeline
	// runs on the local heuristics alone.
	var oracleClient oracle.Client
	apiKey, provider := cfg.OpenAIAPIKey, oracle.ProviderOpenAI
	if cfg.DefaultOracle == string(oracle.ProviderAnthropic) && cfg.AnthropicAPIKey != "" {
		apiKey, provider = cfg.AnthropicAPIKey, oracle.ProviderAnthropic
	}
	if apiKey != "" {
		completer, err := oracle.NewCompleter(provider, apiKey)
		if err != nil {
			log.Warn("failed to create oracle completer, running heuristics only", zap.Error(err))
		} else {
			oracleClient = oracle.NewLLMClient(completer, cfg.OracleModel, cfg.OracleTimeout, log)
			log.Info("classification oracle ready", zap.String("provider", string(provider)))
		}
	} else {
		log.Warn("no oracle API key configured, running heuristics only")
	}

	// Place catalog and resolver
	catalog := place.DefaultCatalog()
	if cfg.CatalogFile != "" {
		loaded, err := place.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			log.Error("failed to load place catalog", zap.String("file", cfg.CatalogFile), zap.Error(err))
			os.Exit(1)
		}
		catalog = loaded
	}
	resolver := place.NewResolver(catalog)

	// Core collaborators
	ticketStore := store.NewMemoryStore()
	dispatches := cache.NewDispatchCache(cfg.DispatchCacheTTL)
	defer dispatches.Close()

	natsChannel := channel.NewNATSChannel(streamManager, log)
	gate := dispatch.NewGate(ticketStore, natsChannel, dispatches, cfg.FolioPrefix, log)
	engine := lifecycle.NewEngine(nil, cfg.AutoCloseOnSatisfied)

	machine := flow.NewMachine(flow.Deps{
		Router:           intent.NewRouter(oracleClient, log),
		Interpreter:      turn.NewInterpreter(oracleClient, log),
		Resolver:         resolver,
		Splitter:         splitter.New(oracleClient, resolver, log),
		Gate:             gate,
		Store:            ticketStore,
		Lifecycle:        engine,
		Dispatches:       dispatches,
		Sender:           natsChannel,
		Notifier:         natsChannel,
		Oracle:           oracleClient,
		Logger:           log,
		MaxPlaceAttempts: cfg.MaxPlaceAttempts,
	})

	sessions := session.NewManager()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	webhookHandler := handler.NewWebhookHandler(sessions, machine.HandleMessage, log)
	ticketHandler := handler.NewTicketHandler(ticketStore, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Webhook-Token"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Channel webhook, authenticated by shared token
	r.Route("/webhook", func(r chi.Router) {
		r.Use(middleware.WebhookAuth(cfg.WebhookToken))
		r.Post("/messages", webhookHandler.Receive)
	})

	// Read API with JWT authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RequireScope("tickets:read"))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/tickets/{folio}", ticketHandler.Get)
		r.Get("/chats/{chatID}/tickets", ticketHandler.ListOpen)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
