package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/af-corp/nutrigate/internal/auth"
	"github.com/af-corp/nutrigate/internal/config"
	"github.com/af-corp/nutrigate/internal/contract"
	"github.com/af-corp/nutrigate/internal/filter"
	"github.com/af-corp/nutrigate/internal/filter/injection"
	"github.com/af-corp/nutrigate/internal/filter/policy"
	"github.com/af-corp/nutrigate/internal/filter/secrets"
	"github.com/af-corp/nutrigate/internal/gateway"
	"github.com/af-corp/nutrigate/internal/inference"
	"github.com/af-corp/nutrigate/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()

	// Missing credentials keep the process up; authenticated routes answer
	// 503 until they arrive.
	if missing := cfg.MissingRequired(); len(missing) > 0 {
		logger.Warn("starting without required configuration", "missing", missing)
	}

	// Connect to Redis (optional token verification cache)
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable (token cache disabled)", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	// Identity verification, rebuilt on config reload so a changed client ID
	// takes effect without a restart.
	verifier := &reloadableVerifier{}
	buildVerifier := func() {
		id := loader.Config().Identity
		gv, err := auth.NewGoogleVerifier(context.Background(), id.ClientID, id.JWKSURL)
		if err != nil {
			logger.Error("failed to initialize identity verifier", "error", err)
			return
		}
		var v auth.Verifier = gv
		if rdb != nil {
			v = auth.NewCachedVerifier(gv, rdb, id.CacheTTL)
		}
		verifier.swap(v)
	}
	buildVerifier()
	loader.OnReload(buildVerifier)

	// Inference client
	llm := inference.NewClient(func() config.InferenceConfig {
		return loader.Config().Inference
	})

	// Filter chain
	policyEval := policy.NewEvaluator(func() config.PolicyFilterConfig {
		return loader.Config().Filter.Policy
	})
	if cfg.Filter.Policy.Enabled {
		if err := policyEval.Load(); err != nil {
			logger.Error("failed to load policy bundle", "error", err)
			os.Exit(1)
		}
	}
	loader.OnReload(func() {
		if loader.Config().Filter.Policy.Enabled {
			if err := policyEval.Load(); err != nil {
				logger.Warn("policy bundle reload failed, keeping previous policies", "error", err)
			}
		}
	})

	chain := filter.NewChain(
		secrets.NewScanner(func() config.SecretsFilterConfig {
			return loader.Config().Filter.Secrets
		}),
		injection.NewScanner(func() config.InjectionFilterConfig {
			return loader.Config().Filter.Injection
		}),
		policyEval,
	)

	// Metrics
	metrics := telemetry.NewMetrics()
	if cfg.Telemetry.MetricsPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Telemetry.MetricsPort)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics listener starting", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn("metrics listener stopped", "error", err)
			}
		}()
	}

	// Build handler
	handler := gateway.NewHandler(llm, contract.NewEnforcer(), chain, metrics, func() *config.Config {
		return loader.Config()
	})

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(gateway.MaxBodyBytes(cfg.Server.MaxBodyBytes))

	// Unauthenticated routes
	r.Get("/api/health", handler.Health)
	r.Get("/api/openapi.json", handler.OpenAPI)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(handler.RequireConfigured)
		r.Use(auth.Middleware(verifier, metrics))
		r.Post("/api/analyze-meal", handler.AnalyzeMeal)
		r.Post("/api/recommendations", handler.Recommendations)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}

// reloadableVerifier lets the identity verifier be swapped on config reload.
type reloadableVerifier struct {
	mu sync.RWMutex
	v  auth.Verifier
}

func (r *reloadableVerifier) swap(v auth.Verifier) {
	r.mu.Lock()
	r.v = v
	r.mu.Unlock()
}

func (r *reloadableVerifier) Verify(ctx context.Context, token string) (*auth.IdentityClaim, error) {
	r.mu.RLock()
	v := r.v
	r.mu.RUnlock()
	if v == nil {
		return nil, fmt.Errorf("identity verifier not initialized")
	}
	return v.Verify(ctx, token)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

func generateRequestID() string {
	now := time.Now()
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}
