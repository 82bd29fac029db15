package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"statuswatch/app/internal/auth"
	"statuswatch/app/internal/database"
)

var incidentDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)

var incidentSeverities = map[string]bool{
	"Minor Outage":    true,
	"Moderate Outage": true,
	"Major Outage":    true,
	"Critical Outage": true,
}

// HandleSetManualStatus creates or replaces a manual override for a service
func HandleSetManualStatus() http.HandlerFunc {
	type request struct {
		ServiceID      int64  `json:"service_id"`
		Status         string `json:"status"`
		Description    string `json:"description"`
		Severity       string `json:"severity"`
		ContinueUptime bool   `json:"continue_uptime"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Status == "" {
			writeError(w, http.StatusBadRequest, "status is required")
			return
		}
		severity, ok := normalizeSeverity(req.Severity)
		if !ok {
			writeError(w, http.StatusBadRequest, "severity must be Low, Medium, High, or empty")
			return
		}

		svc, err := database.GetServiceByID(req.ServiceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if svc == nil {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}

		if req.Description == "" {
			req.Description = "No description provided"
		}
		if err := database.SetManualStatus(req.ServiceID, req.Status, req.Description, severity, req.ContinueUptime); err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"service": svc.Name, "status": req.Status})
	}
}

// HandleUnsetManualStatus removes a service's manual override
func HandleUnsetManualStatus() http.HandlerFunc {
	type request struct {
		ServiceID int64 `json:"service_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		removed, err := database.UnsetManualStatus(req.ServiceID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, "no manual status set for this service")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"result": "removed"})
	}
}

// HandleAddIncident records a new incident
func HandleAddIncident() http.HandlerFunc {
	type request struct {
		Service     string `json:"service"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
		Date        string `json:"date"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Service == "" || req.Title == "" {
			writeError(w, http.StatusBadRequest, "service and title are required")
			return
		}
		if !incidentDateRe.MatchString(req.Date) {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD HH:MM")
			return
		}
		if !incidentSeverities[req.Severity] {
			writeError(w, http.StatusBadRequest, "severity must be one of Minor/Moderate/Major/Critical Outage")
			return
		}

		svc, err := database.GetServiceByName(req.Service)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if svc == nil {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}

		id, err := database.AddIncident(req.Service, req.Title, req.Description, req.Severity, req.Date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// HandleUpdateIncident replaces an incident's fields
func HandleUpdateIncident() http.HandlerFunc {
	type request struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if !incidentSeverities[req.Severity] {
			writeError(w, http.StatusBadRequest, "severity must be one of Minor/Moderate/Major/Critical Outage")
			return
		}

		updated, err := database.UpdateIncident(req.ID, req.Title, req.Description, req.Severity)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !updated {
			writeError(w, http.StatusNotFound, "incident not found")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"result": "updated"})
	}
}

// HandleRemoveIncident deletes an incident by id
func HandleRemoveIncident() http.HandlerFunc {
	type request struct {
		ID int64 `json:"id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		removed, err := database.RemoveIncident(req.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, "incident not found")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"result": "removed"})
	}
}

// HandleGenerateToken mints and stores a new API token for a user
func HandleGenerateToken() http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		token, err := auth.GenerateToken()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if err := database.CreateToken(token, req.UserID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"token": token})
	}
}

// HandleRevokeToken deletes an API token
func HandleRevokeToken() http.HandlerFunc {
	type request struct {
		Token string `json:"token"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		removed, err := database.DeleteToken(req.Token)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, "token not found")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"result": "revoked"})
	}
}

// normalizeSeverity canonicalizes a severity label. Empty severity is valid
// and means informational-only.
func normalizeSeverity(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "low":
		return "Low", true
	case "medium":
		return "Medium", true
	case "high":
		return "High", true
	}
	return "", false
}
