package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/config"
	"github.com/kailas-cloud/esodm/internal/db"
	"github.com/kailas-cloud/esodm/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/esodm/internal/db/redis"
	logpkg "github.com/kailas-cloud/esodm/internal/logger"
	"github.com/kailas-cloud/esodm/internal/metrics"
	documentrepo "github.com/kailas-cloud/esodm/internal/repository/document"
	indexrepo "github.com/kailas-cloud/esodm/internal/repository/index"
	"github.com/kailas-cloud/esodm/internal/repository/querycache"
	searchrepo "github.com/kailas-cloud/esodm/internal/repository/search"
	chiTransport "github.com/kailas-cloud/esodm/internal/transport/chi"
	bulkuc "github.com/kailas-cloud/esodm/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/esodm/internal/usecase/document"
	healthuc "github.com/kailas-cloud/esodm/internal/usecase/health"
	indexuc "github.com/kailas-cloud/esodm/internal/usecase/index"
	searchuc "github.com/kailas-cloud/esodm/internal/usecase/search"
	"github.com/kailas-cloud/esodm/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting esodm API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register store metrics explicitly (no init())
	metrics.RegisterStoreMetrics()

	store, err := elastic.NewStore(elastic.Config{
		Addrs:               cfg.Elasticsearch.Addrs,
		Username:            cfg.Elasticsearch.Username,
		Password:            cfg.Elasticsearch.Password,
		APIKey:              cfg.Elasticsearch.APIKey,
		MaxRetries:          cfg.Elasticsearch.MaxRetries,
		RetryOnStatus:       cfg.Elasticsearch.RetryOnStatus,
		CompressRequestBody: cfg.Elasticsearch.Compress,
		Logger:              logger,
		Observe:             metrics.ObserveStore,
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the cluster to be ready
	ctx := context.Background()
	readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to elasticsearch")

	// Search cache. Pass nil interfaces (not typed nil pointers!) when disabled.
	var (
		searchStore searchStorer = store
		invalidator indexuc.Invalidator
		cachePinger healthuc.Pinger
	)
	if cfg.Cache.Enabled {
		kv, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Cache.Addrs, Password: cfg.Cache.Password})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer kv.Close()
		if err := kv.WaitForReady(ctx, readiness); err != nil {
			// без кэша работаем, health покажет degraded
			logger.Warn("Cache not ready", zap.Error(err))
		}

		cache := querycache.New(store, kv, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SearchCacheTotal, logger)
		searchStore, invalidator, cachePinger = cache, cache, kv
		logger.Info("Search cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Repositories
	docRepo := documentrepo.New(store, db.Refresh(cfg.Elasticsearch.Refresh))

	// Use case services
	indexSvc := indexuc.New(indexrepo.New(store), invalidator)
	docSvc := documentuc.New(docRepo, invalidator)
	bulkSvc := bulkuc.New(docRepo, invalidator).
		WithLimits(cfg.Bulk.MaxBatchSize, cfg.Bulk.MaxBatchBytes, cfg.Bulk.Workers).
		WithItemCounter(metrics.BulkItemsTotal)
	searchSvc := searchuc.New(searchrepo.New(searchStore)).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(indexSvc, docSvc, bulkSvc, searchSvc, healthSvc, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	server.Routes(r)

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
	logger.Info("Server stopped gracefully")
}

// searchStorer is satisfied by both the engine store and the query cache.
type searchStorer interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
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
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
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

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("index", chi.URLParam(r, "index")),
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
