// Package health serves the liveness/readiness probe.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/students-api/internal/utils/response"
)

const pingTimeout = 2 * time.Second

// Pinger is the part of storage.Storage the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check handles GET /healthz: 200 when the datastore answers a ping,
// 503 otherwise.
func Check(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable,
				response.GeneralError("datastore unavailable"))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}
