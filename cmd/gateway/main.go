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
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/config"
	dbRedis "github.com/madhava-cloud/gateway/internal/db/redis"
	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/extractor"
	logpkg "github.com/madhava-cloud/gateway/internal/logger"
	"github.com/madhava-cloud/gateway/internal/metrics"
	alertsrepo "github.com/madhava-cloud/gateway/internal/repository/alerts"
	"github.com/madhava-cloud/gateway/internal/repository/embcache"
	"github.com/madhava-cloud/gateway/internal/repository/retrieval"
	snapshotrepo "github.com/madhava-cloud/gateway/internal/repository/snapshot"
	"github.com/madhava-cloud/gateway/internal/supervise"
	chiTransport "github.com/madhava-cloud/gateway/internal/transport/chi"
	openaiTransport "github.com/madhava-cloud/gateway/internal/transport/openai"
	alertuc "github.com/madhava-cloud/gateway/internal/usecase/alert"
	healthuc "github.com/madhava-cloud/gateway/internal/usecase/health"
	queryuc "github.com/madhava-cloud/gateway/internal/usecase/query"
	"github.com/madhava-cloud/gateway/internal/usecase/registry"
	"github.com/madhava-cloud/gateway/internal/version"
)

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gateway API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	llmCfg := &openaiTransport.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Dimensions:     cfg.LLM.Dimensions,
		MaxTokens:      cfg.LLM.MaxTokens,
		Temperature:    cfg.LLM.Temperature,
		Logger:         logger,
	}
	embedder := openaiTransport.NewEmbedder(llmCfg)
	generator := openaiTransport.NewGenerator(llmCfg)
	logger.Info("LLM clients created",
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
	)

	// Cache query embeddings: repeat questions skip the embedding API
	cachedEmbedder := embcache.New(
		embedder, store, cfg.Database.KeyPrefix, metrics.EmbeddingCacheTotal, logger,
	)

	// One retrieval backend per domain, all over the same store
	reg := registry.New(func(d domain.Domain) registry.Backend {
		return retrieval.NewBackend(store, cachedEmbedder, d, cfg.Database.KeyPrefix)
	})

	snapshots := snapshotrepo.New(store, cfg.Database.KeyPrefix)
	alertHistory := alertsrepo.New(store, cfg.Database.KeyPrefix, cfg.Alerts.HistoryLimit)

	hub := alertuc.NewHub()
	alertManager := alertuc.NewManager(alertHistory, hub, logger, cfg.Alerts.QueueSize)

	querySvc := queryuc.New(reg, extractor.New(), generator, snapshots, alertManager).
		WithTopK(cfg.Retrieval.TopK).
		WithStageTimeout(time.Duration(cfg.Pipeline.StageTimeoutSec) * time.Second)

	// Auxiliary services the gateway fronts
	supervisor := supervise.New(logger)
	if err := supervisor.Start(cfg.Services.Commands); err != nil {
		logger.Fatal("Failed to start supervised services", zap.Error(err))
	}

	healthSvc := healthuc.New(store, embedder, supervisor)

	server := chiTransport.NewServer(
		querySvc, generator, healthSvc, alertHistory, snapshots, hub, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Stop intake last: in-flight requests may still queue alerts.
	alertManager.Close()
	supervisor.Stop()

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					chiTransport.WriteServerError(w,
						http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
