package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/episteme/server/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"golang.org/x/sync/errgroup"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

// HealthChecker provides readiness checks over the server's dependencies
type HealthChecker struct {
	pool        *pgxpool.Pool
	riverClient *river.Client[pgx.Tx]
	version     string
	gitCommit   string
}

func NewHealthChecker(pool *pgxpool.Pool, riverClient *river.Client[pgx.Tx], version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		pool:        pool,
		riverClient: riverClient,
		version:     version,
		gitCommit:   gitCommit,
	}
}

// Healthz is the liveness probe: the process is up and serving.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

// Readyz runs dependency checks and reports 503 until all pass.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var database, jobQueue CheckResult
		var group errgroup.Group
		group.Go(func() error {
			database = h.checkDatabase(ctx)
			return nil
		})
		group.Go(func() error {
			jobQueue = h.checkJobQueue(ctx)
			return nil
		})
		_ = group.Wait()

		checks := map[string]CheckResult{
			"database":  database,
			"job_queue": jobQueue,
		}

		status := "healthy"
		httpStatus := http.StatusOK
		for name, check := range checks {
			value := 1.0
			if check.Status == "fail" {
				value = 0
				status = "unhealthy"
				httpStatus = http.StatusServiceUnavailable
			}
			metrics.HealthCheckStatus.WithLabelValues(name).Set(value)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(HealthCheck{
			Status:    status,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.pool == nil {
		return CheckResult{Status: "fail", Message: "pool not configured"}
	}

	start := time.Now()
	if err := h.pool.Ping(ctx); err != nil {
		return CheckResult{Status: "fail", Message: err.Error(), LatencyMs: time.Since(start).Milliseconds()}
	}
	return CheckResult{Status: "pass", LatencyMs: time.Since(start).Milliseconds()}
}

func (h *HealthChecker) checkJobQueue(ctx context.Context) CheckResult {
	if h.pool == nil {
		return CheckResult{Status: "fail", Message: "pool not configured"}
	}
	if h.riverClient == nil {
		return CheckResult{Status: "fail", Message: "river client not configured"}
	}

	start := time.Now()
	var pending int64
	err := h.pool.QueryRow(ctx, `SELECT count(*) FROM river_job WHERE state = 'available'`).Scan(&pending)
	if err != nil {
		return CheckResult{Status: "fail", Message: err.Error(), LatencyMs: time.Since(start).Milliseconds()}
	}
	return CheckResult{Status: "pass", LatencyMs: time.Since(start).Milliseconds()}
}
