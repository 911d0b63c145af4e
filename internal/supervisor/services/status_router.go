// Hoard - Installation Backup and Recovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hoard

package services

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/tomtom215/hoard/internal/backup"
	"github.com/tomtom215/hoard/internal/logging"
	"github.com/tomtom215/hoard/internal/metrics"
)

// StatsProvider reports catalog statistics. *backup.Manager satisfies it.
type StatsProvider interface {
	Stats() *backup.Stats
}

// healthResponse is the /healthz body
type healthResponse struct {
	Status       backup.Health `json:"status"`
	NewestID     string        `json:"newest_id,omitempty"`
	NewestBackup *time.Time    `json:"newest_backup,omitempty"`
	TotalCount   int           `json:"total_count"`
	MissingCount int           `json:"missing_count"`
}

// statusRateLimit caps requests per client IP per minute; /healthz walks the catalog
const statusRateLimit = 120

// NewStatusRouter returns the router served by the schedule command
func NewStatusRouter(stats StatsProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogging)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(statusRateLimit, time.Minute))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/healthz", healthHandler(stats))

	return r
}

func healthHandler(stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := stats.Stats()
		body := healthResponse{
			Status:       s.Health,
			NewestID:     s.NewestID,
			NewestBackup: s.NewestBackup,
			TotalCount:   s.TotalCount,
			MissingCount: s.MissingCount,
		}

		code := http.StatusOK
		if s.Health == backup.HealthCritical {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logging.Warn().Err(err).Msg("Failed to write health response")
		}
	}
}
