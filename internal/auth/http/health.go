package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/jwtauth/pkg/authsdk"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

// Probe responses are plain JSON rather than the response envelope so that
// orchestrators can read them without knowing about it.

func (r *Router) health(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
		Version: r.buildVersion,
		Checks:  checks,
	}
}

// handleLivez godoc
//
//	@Summary		Liveness probe
//	@Description	Reports that the process is up. Always 200 while the server is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, r.health("ok", nil))
}

// handleReadyz godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the token store. Returns 503 while the store is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"store unreachable"
//	@Router			/readyz [get].
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Ping(req.Context()); err != nil {
		slogx.FromContext(req.Context()).Warn("readiness: database ping failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable,
			r.health("degraded", &authsdk.HealthChecks{Database: "error"}))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, r.health("ok", &authsdk.HealthChecks{Database: "ok"}))
}
