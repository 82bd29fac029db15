package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"statuswatch/app/internal/database"
	"statuswatch/app/internal/models"
	"statuswatch/app/internal/stats"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// CategoryGroup is one category's services in configured order
type CategoryGroup struct {
	Category string                     `json:"category"`
	Services []models.ServiceStatusView `json:"services"`
}

// HandleStatuses returns every service's effective status with the four
// uptime windows, grouped by category in configured order.
func HandleStatuses(agg *stats.Aggregator, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := agg.BuildStatusViews(now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		groups := make([]CategoryGroup, 0)
		for _, v := range views {
			if len(groups) == 0 || groups[len(groups)-1].Category != v.Category {
				groups = append(groups, CategoryGroup{Category: v.Category})
			}
			g := &groups[len(groups)-1]
			g.Services = append(g.Services, v)
		}

		writeJSON(w, http.StatusOK, groups)
	}
}

// HandleStatusesByDate returns every service's daily record for one date.
// The date must be YYYY-MM-DD.
func HandleStatusesByDate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.PathValue("date")
		if !dateRe.MatchString(date) {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}
		if _, err := time.Parse(database.DateFormat, date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}

		statuses, err := database.GetStatusesByDate(date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if len(statuses) == 0 {
			writeError(w, http.StatusNotFound, "no statuses found for date "+date)
			return
		}

		writeJSON(w, http.StatusOK, statuses)
	}
}

// HandleServiceUptime returns the last N days of one service's daily uptime
// history, most recent first.
func HandleServiceUptime(agg *stats.Aggregator, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid service id")
			return
		}

		days := 30
		if q := r.URL.Query().Get("days"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "days must be a positive integer")
				return
			}
			days = n
		}

		svc, err := database.GetServiceByID(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if svc == nil {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}

		history, err := agg.History(id, days, now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if len(history) == 0 {
			writeError(w, http.StatusNotFound, "no uptime history for this service")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"service": svc.Name,
			"days":    history,
		})
	}
}

// HandleIncidents lists incidents, optionally filtered by serviceName and by
// date (YYYY-MM-DD prefix match).
func HandleIncidents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceName := r.URL.Query().Get("serviceName")
		date := r.URL.Query().Get("date")

		if date != "" && !dateRe.MatchString(date) {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}

		incidents, err := database.GetIncidents(serviceName, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if incidents == nil {
			incidents = []models.Incident{}
		}

		service := serviceName
		if service == "" {
			service = "All Services"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   service,
			"incidents": incidents,
		})
	}
}
