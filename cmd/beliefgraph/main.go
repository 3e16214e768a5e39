package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/config"
	"github.com/kailas-cloud/beliefgraph/internal/db"
	dbRedis "github.com/kailas-cloud/beliefgraph/internal/db/redis"
	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	logpkg "github.com/kailas-cloud/beliefgraph/internal/logger"
	"github.com/kailas-cloud/beliefgraph/internal/metrics"
	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
	modelrepo "github.com/kailas-cloud/beliefgraph/internal/repository/model"
	chiTransport "github.com/kailas-cloud/beliefgraph/internal/transport/chi"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/health"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/narrative"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/session"
	"github.com/kailas-cloud/beliefgraph/internal/version"
)

func main() {
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

	logger.Info("Starting beliefgraph API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("model_store", cfg.Model.Store),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterResolverMetrics()
	metrics.RegisterTrainingMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, kv, err := openModelStore(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open model store", zap.Error(err))
	}
	if kv != nil {
		defer kv.Close()
	}

	model, err := store.Load(ctx)
	if errors.Is(err, domain.ErrModelNotFound) {
		logger.Fatal("No trained model, run `beliefctl train` first", zap.String("location", store.Location()))
	}
	if err != nil {
		logger.Fatal("Failed to load model", zap.String("location", store.Location()), zap.Error(err))
	}
	metrics.ModelVocabularySize.Set(float64(model.Len()))
	logger.Info("Model loaded",
		zap.String("location", store.Location()),
		zap.Int("nodes", model.Len()),
		zap.Int("dimensions", model.Dimensions()),
	)

	// Documents back the narrative context endpoint only.
	docs, report, err := corpus.NewLoader(logger).Load(ctx, cfg.Corpus.Files...)
	if err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}
	logger.Info("Corpus loaded",
		zap.Int("documents", len(docs)),
		zap.Int("missing_files", len(report.MissingFiles)),
	)

	// Use case services
	resolveSvc := resolve.NewService(model, cfg.DomainResolver(), logger)
	sessions := session.NewRegistry(resolveSvc, time.Duration(cfg.Session.IdleTTLSec)*time.Second, logger)
	go sessions.RunSweeper(ctx, time.Duration(cfg.Session.SweepIntervalSec)*time.Second)
	narrativeSvc := narrative.New(corpusDocs(docs), cfg.Narrative.MaxDocuments, logger)

	// Pass a nil interface, not a typed nil pointer, when no KV store is used.
	var pinger health.StorePinger
	if kv != nil {
		pinger = kv
	}
	healthSvc := health.New(model, pinger)

	server := chiTransport.NewServer(resolveSvc, sessions, narrativeSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.HTTP.ServiceName),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal", zap.Int("sessions", sessions.Len()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// corpusDocs serves the documents loaded at startup.
type corpusDocs []domain.Document

func (d corpusDocs) Documents() []domain.Document { return d }

type modelStore interface {
	Load(ctx context.Context) (*embedding.Model, error)
	Location() string
}

// openModelStore returns the configured model store and, for redis, the
// underlying connection so it can be pinged and closed.
func openModelStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (modelStore, db.Store, error) {
	if cfg.Model.Store != config.ModelStoreRedis {
		return modelrepo.NewFileStore(cfg.Model.Path), nil, nil
	}

	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create redis store: %w", err)
	}
	if err := kv.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("redis not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
	return modelrepo.NewKVStore(kv, cfg.Storage.KeyPrefix, cfg.Model.Name), kv, nil
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
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
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
