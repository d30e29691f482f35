package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/catalogo-backend/api/responses"
	"github.com/angelmondragon/catalogo-backend/pkg/config"
	"github.com/angelmondragon/catalogo-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/catalogo-backend/pkg/errors"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
)

const readyPingTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Catalogo-Env", cfg.App.Env)
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Catalogo-Env", cfg.App.Env)

		if dbP != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
			defer cancel()
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: ping"), "service not ready")
				return
			}
		}

		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
