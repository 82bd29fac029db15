package handlers

import (
	"net/http"
	"time"

	"statuswatch/app/internal/auth"
	"statuswatch/app/internal/security"
	"statuswatch/app/internal/stats"
)

// SetupRoutes configures all HTTP routes and middlewares
func SetupRoutes(authMgr *auth.Auth, agg *stats.Aggregator, now func() time.Time, refresh time.Duration) http.Handler {
	mux := http.NewServeMux()

	// Public API, bearer-token gated and rate limited per token
	mux.HandleFunc("GET /api/statuses", authMgr.Authorize(HandleStatuses(agg, now)))
	mux.HandleFunc("GET /api/statuses/date/{date}", authMgr.Authorize(HandleStatusesByDate()))
	mux.HandleFunc("GET /api/services/{id}/uptime", authMgr.Authorize(HandleServiceUptime(agg, now)))
	mux.HandleFunc("GET /api/services/incidents", authMgr.Authorize(HandleIncidents()))

	// Live dashboard feed
	mux.HandleFunc("GET /api/live", HandleLive(agg, now, refresh))

	// Admin command surface
	mux.HandleFunc("POST /api/admin/manual-status", authMgr.RequireAdmin(HandleSetManualStatus()))
	mux.HandleFunc("DELETE /api/admin/manual-status", authMgr.RequireAdmin(HandleUnsetManualStatus()))
	mux.HandleFunc("POST /api/admin/incidents", authMgr.RequireAdmin(HandleAddIncident()))
	mux.HandleFunc("PUT /api/admin/incidents", authMgr.RequireAdmin(HandleUpdateIncident()))
	mux.HandleFunc("DELETE /api/admin/incidents", authMgr.RequireAdmin(HandleRemoveIncident()))
	mux.HandleFunc("POST /api/admin/tokens", authMgr.RequireAdmin(HandleGenerateToken()))
	mux.HandleFunc("DELETE /api/admin/tokens", authMgr.RequireAdmin(HandleRevokeToken()))

	return security.SecureHeaders(mux)
}
