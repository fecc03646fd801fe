package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/electrohogar/storefront-backend/api/responses"
	"github.com/electrohogar/storefront-backend/pkg/config"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is the connectivity probe shared by the readiness dependencies.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ElectroHogar-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the database, redis, and the upstream catalog API. Nil
// dependencies are reported as skipped rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, upstreamP Pinger) http.HandlerFunc {
	probes := []struct {
		name   string
		pinger Pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"catalog_api", upstreamP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ElectroHogar-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		statuses := make(map[string]string, len(probes))
		healthy := true
		for _, probe := range probes {
			if probe.pinger == nil {
				statuses[probe.name] = "skipped"
				continue
			}
			if err := probe.pinger.Ping(ctx); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "readiness probe failed: "+probe.name)
				statuses[probe.name] = "unavailable"
				healthy = false
				continue
			}
			statuses[probe.name] = "ok"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(statuses)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
