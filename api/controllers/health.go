package controllers

import (
	"net/http"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/db"
	"github.com/qmedica/catalog-backend/pkg/logger"
	"github.com/qmedica/catalog-backend/pkg/redis"
)

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady checks the database and session store before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true

		if dbP == nil {
			checks["db"] = "not configured"
			healthy = false
		} else if err := dbP.Ping(r.Context()); err != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "health.db_unreachable")
			checks["db"] = "unreachable"
			healthy = false
		}

		if redisClient == nil {
			checks["redis"] = "not configured"
			healthy = false
		} else if err := redisClient.Ping(r.Context()); err != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "health.redis_unreachable")
			checks["redis"] = "unreachable"
			healthy = false
		}

		status := http.StatusOK
		checks["env"] = cfg.App.Env
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, status, checks)
	}
}
