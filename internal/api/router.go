package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/episteme/server/internal/api/handlers"
	"github.com/episteme/server/internal/api/middleware"
	"github.com/episteme/server/internal/auth"
	"github.com/episteme/server/internal/config"
	"github.com/episteme/server/internal/domain/briefs"
	"github.com/episteme/server/internal/domain/cases"
	"github.com/episteme/server/internal/domain/events"
	"github.com/episteme/server/internal/domain/search"
	"github.com/episteme/server/internal/embedding"
	"github.com/episteme/server/internal/jobs"
	"github.com/episteme/server/internal/metrics"
	"github.com/episteme/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
)

// Router bundles the HTTP handler with the long-lived components the serve
// command starts and stops alongside the server.
type Router struct {
	Handler     http.Handler
	RiverClient *river.Client[pgx.Tx]
	Hub         *events.Hub
	Embedder    *embedding.Client
}

// NewRouter wires repositories, services, background workers, and handlers
// into a single HTTP surface.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, version, gitCommit string) (*Router, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, fmt.Errorf("repository init: %w", err)
	}

	embedder := embedding.NewClient(
		cfg.Embedding.BaseURL,
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.Timeout,
		logger,
	)

	briefsService := briefs.NewService(repo.Briefs(), repo.Events(), logger)

	workers := river.NewWorkers()
	river.AddWorker(workers, jobs.RecomputeBriefWorker{Briefs: briefsService, Logger: logger})
	river.AddWorker(workers, jobs.EmbedPassageWorker{Passages: repo.Passages(), Embedder: embedder, Logger: logger})
	river.AddWorker(workers, jobs.PruneStaleBriefsWorker{Briefs: repo.Briefs(), Logger: logger})

	riverClient, err := jobs.NewClient(
		pool,
		workers,
		slog.Default(),
		[]rivertype.Hook{metrics.NewRiverMetricsHook()},
		jobs.NewPeriodicJobs(),
	)
	if err != nil {
		return nil, fmt.Errorf("river client init: %w", err)
	}

	hub := events.NewHub()
	eventsService := events.NewService(repo.Events(), jobs.NewEnqueuer(riverClient), hub, repo.Briefs())
	casesService := cases.NewService(repo.Cases(), cfg.Server.BaseURL)
	searchService := search.NewService(embedder, repo.Passages())

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	gate := auth.NewGate(tokens, repo.Users())

	casesHandler := handlers.NewCasesHandler(casesService, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	briefsHandler := handlers.NewBriefsHandler(briefsService, cfg.Environment)
	searchHandler := handlers.NewSearchHandler(searchService, cfg.Environment)
	streamHandler := handlers.NewStreamHandler(gate, casesService, hub, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(pool, riverClient, version, gitCommit)

	authed := middleware.BearerAuth(gate)
	userTier := middleware.WithRateLimitTierHandler(middleware.TierUser)
	limit := middleware.RateLimit(cfg.RateLimit)

	// The limiter picks its tier from the request context, so it sits
	// inside the tier middleware, which sits inside auth.
	protect := func(h http.HandlerFunc) http.Handler {
		return authed(userTier(limit(h)))
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", healthChecker.Readyz())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/cases", methodMux(map[string]http.Handler{
		http.MethodGet:  protect(casesHandler.List),
		http.MethodPost: protect(casesHandler.Create),
	}))
	mux.Handle("/api/v1/cases/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: protect(casesHandler.Get),
	}))
	mux.Handle("/api/v1/cases/{id}/close", methodMux(map[string]http.Handler{
		http.MethodPost: protect(casesHandler.Close),
	}))
	mux.Handle("/api/v1/cases/{id}/archive", methodMux(map[string]http.Handler{
		http.MethodPost: protect(casesHandler.Archive),
	}))
	mux.Handle("/api/v1/cases/{id}/events", methodMux(map[string]http.Handler{
		http.MethodGet:  protect(eventsHandler.List),
		http.MethodPost: protect(eventsHandler.Append),
	}))
	mux.Handle("/api/v1/cases/{id}/brief", methodMux(map[string]http.Handler{
		http.MethodGet: protect(briefsHandler.Get),
	}))
	mux.Handle("/api/v1/cases/{id}/stream", methodMux(map[string]http.Handler{
		// The stream handler resolves the bearer token itself so it can
		// hold the connection open after the handshake.
		http.MethodGet: limit(http.HandlerFunc(streamHandler.Stream)),
	}))
	mux.Handle("/api/v1/search", methodMux(map[string]http.Handler{
		http.MethodGet: protect(searchHandler.Search),
	}))

	var handler http.Handler = mux
	handler = middleware.Recover(cfg.Environment)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)

	return &Router{
		Handler:     handler,
		RiverClient: riverClient,
		Hub:         hub,
		Embedder:    embedder,
	}, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
