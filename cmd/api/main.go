package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"okr-planner-backend/internal/ai"
	"okr-planner-backend/internal/analytics"
	"okr-planner-backend/internal/auth"
	"okr-planner-backend/internal/config"
	"okr-planner-backend/internal/db"
	"okr-planner-backend/internal/errlog"
	"okr-planner-backend/internal/events"
	"okr-planner-backend/internal/httpx"
	"okr-planner-backend/internal/keyresults"
	"okr-planner-backend/internal/logger"
	"okr-planner-backend/internal/metrics"
	"okr-planner-backend/internal/tasks"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	charmlog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// analytics is optional: without a database events are dropped
	var store analytics.Execer
	if cfg.AnalyticsEnabled() {
		database, err := db.Connect(ctx, cfg.ConnString())
		if err != nil {
			log.Fatal("failed to connect DB", "err", err)
		}
		defer database.Close()
		store = database
		log.Info("connected to PostgreSQL", "host", cfg.DBHost, "db", cfg.DBName)
	} else {
		log.Warn("DB_HOST not set, analytics disabled")
	}

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatal("failed to create generator", "provider", cfg.AIProvider, "err", err)
	}
	// covers retries too; must stay below WriteTimeout
	gen = ai.WithTimeout(gen, cfg.AITimeout)
	log.Info("generator ready", "provider", cfg.AIProvider, "timeout", cfg.AITimeout)

	ring := errlog.NewRing(cfg.ErrorLogSize)
	m := metrics.New()
	hub := events.NewHub(log)
	hub.Subscribe(analytics.NewRecorder(store, log).Record)
	hub.Subscribe(m.Observe)
	hub.Subscribe(func(_ context.Context, s events.Suggestion) {
		log.Debug("suggestion published", "kind", s.Kind, "outcome", s.Outcome, "count", s.Count, "user", s.UserID)
	})
	log.Info("event hub ready", "subscribers", hub.Len())

	validate := validator.New()
	authMW := auth.New([]byte(cfg.JWTSecret))
	if !cfg.AuthEnabled() {
		log.Warn("JWT_SECRET not set, suggestion endpoints are public")
	}

	reporter := httpx.NewReporter(hub, ring)
	taskHandler := tasks.New(gen, reporter, validate, log)
	krHandler := keyresults.New(gen, reporter, validate, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("/debug/errors", authMW.Wrap(errlog.DebugHandler(ring)))

	mux.HandleFunc("POST /tasks/suggest", authMW.Wrap(taskHandler.Suggest))
	mux.HandleFunc("POST /tasks/normalize", authMW.Wrap(taskHandler.Normalize))
	mux.HandleFunc("POST /key-results/suggest", authMW.Wrap(krHandler.Suggest))
	mux.HandleFunc("POST /key-results/normalize", authMW.Wrap(krHandler.Normalize))
	mux.HandleFunc("POST /analytics/suggestion-accepted", authMW.Wrap(analytics.SuggestionAcceptedHandler(store, validate, log)))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type", "Authorization",
			"X-Platform", "X-App-Version", "X-Device-Locale", "X-Session-Id",
			"X-Source-Event-Key", "Idempotency-Key",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           c.Handler(logger.Middleware(log)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AITimeout + 15*time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("API server is running", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", "err", err)
	}
}

func newGenerator(ctx context.Context, cfg *config.Config) (ai.Generator, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		return ai.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel)
	default:
		return ai.NewProxyClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AITimeout), nil
	}
}
