package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/fenris-bot/fenris/pkg/dataaccess"
	dbMonitoring "github.com/fenris-bot/fenris/pkg/dataaccess/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

func (a *App) healthCheck() Controller {
	checker := health.NewChecker(
		// Set a TTL of 1 second for the results of the checks.
		health.WithCacheDuration(1*time.Second),

		// Set a timeout of 2 seconds for the checks.
		health.WithTimeout(2*time.Second),

		// Monitor the health of the database (MongoDB).
		health.WithCheck(health.Check{
			Name: "MongoDB",
			Check: func(ctx context.Context) error {
				// Create a new timer to measure the latency of the check.
				t := prometheus.NewTimer(dbMonitoring.MongoLatency.WithLabelValues("health_check", "ping", "-", "-"))
				defer t.ObserveDuration()
				dbMonitoring.MongoTotalRequests.WithLabelValues("health_check", "ping", "-", "-").Inc()

				if err := dataaccess.MongoDB.Ping(ctx, nil); err != nil {
					return fmt.Errorf("failed to ping MongoDB: %w", err)
				}
				return nil
			},
			Timeout: 2 * time.Second,
			StatusListener: func(ctx context.Context, name string, state health.CheckState) {
				a.Log().Info("MongoDB health check status changed",
					slog.String("name", name),
					slog.String("state", string(state.Status)),
				)
			},
		}),

		// Monitor the health of the Discord API.
		health.WithPeriodicCheck(15*time.Second, 5*time.Second, health.Check{
			Name: "Discord_API",
			Check: func(ctx context.Context) error {
				if _, err := a.Session().GatewayBot(); err != nil {
					return fmt.Errorf("failed to ping Discord API: %w", err)
				}
				return nil
			},
			Timeout: 3 * time.Second,
			StatusListener: func(ctx context.Context, name string, state health.CheckState) {
				a.Log().Info("Discord API health check status changed",
					slog.String("name", name),
					slog.String("state", string(state.Status)),
				)
			},
		}),
	)

	return Controller(health.NewHandler(checker))
}
