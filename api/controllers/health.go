package controllers

import (
	"net/http"

	"github.com/automarkt/automarkt-backend/api/responses"
	"github.com/automarkt/automarkt-backend/pkg/config"
	"github.com/automarkt/automarkt-backend/pkg/db"
	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
	"github.com/automarkt/automarkt-backend/pkg/logger"
	"github.com/automarkt/automarkt-backend/pkg/redis"
	"github.com/automarkt/automarkt-backend/pkg/storage/gcs"
)

const envHeader = "X-AutoMarkt-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every dependency the request path needs. A nil client
// is skipped so partial deployments can still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		failed := false

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = err.Error()
				failed = true
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				failed = true
			} else {
				checks["redis"] = "ok"
			}
		}
		if gcsP != nil {
			if err := gcsP.Ping(ctx); err != nil {
				checks["gcs"] = err.Error()
				failed = true
			} else {
				checks["gcs"] = "ok"
			}
		}

		if failed {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
