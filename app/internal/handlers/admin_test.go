package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"statuswatch/app/internal/database"
	"statuswatch/app/internal/models"
)

func adminReq(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Admin-Password", testAdminPass)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --------------- admin gate ---------------

func TestAdmin_WrongPassword(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/admin/tokens", strings.NewReader(`{"user_id":"u"}`))
	req.Header.Set("X-Admin-Password", "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestAdmin_MissingPassword(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/admin/tokens", strings.NewReader(`{"user_id":"u"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// --------------- manual status ---------------

func TestSetManualStatus_UnknownService(t *testing.T) {
	h := newTestServer(t)

	rec := adminReq(h, "POST", "/api/admin/manual-status",
		`{"service_id":42,"status":"Maintenance"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSetManualStatus_MissingStatus(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})

	rec := adminReq(h, "POST", "/api/admin/manual-status", `{"service_id":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSetManualStatus_InvalidSeverity(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})

	rec := adminReq(h, "POST", "/api/admin/manual-status",
		`{"service_id":1,"status":"Maintenance","severity":"catastrophic"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSetManualStatus_DefaultsAndNormalization(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})
	svc, _ := database.GetServiceByName("svc")

	rec := adminReq(h, "POST", "/api/admin/manual-status",
		`{"service_id":1,"status":"Maintenance","severity":"HIGH","continue_uptime":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	m, _ := database.GetManualStatus(svc.ID)
	if m == nil {
		t.Fatal("override should be stored")
	}
	if m.Description != "No description provided" {
		t.Errorf("expected default description, got %q", m.Description)
	}
	if m.Severity != "High" {
		t.Errorf("severity should be canonicalized, got %q", m.Severity)
	}
	if !m.ContinueUptime {
		t.Error("continue_uptime should be stored")
	}
}

func TestSetManualStatus_EmptySeverityAllowed(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})

	rec := adminReq(h, "POST", "/api/admin/manual-status",
		`{"service_id":1,"status":"Notice"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("informational override without severity should pass, got %d", rec.Code)
	}
}

func TestUnsetManualStatus(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})
	svc, _ := database.GetServiceByName("svc")

	// Nothing set yet
	rec := adminReq(h, "DELETE", "/api/admin/manual-status", `{"service_id":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no override, got %d", rec.Code)
	}

	database.SetManualStatus(svc.ID, "Maintenance", "", "", true)

	rec = adminReq(h, "DELETE", "/api/admin/manual-status", `{"service_id":1}`)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if m, _ := database.GetManualStatus(svc.ID); m != nil {
		t.Error("override should be removed")
	}
}

// --------------- incidents ---------------

func TestAddIncident_Validation(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"service":"svc","severity":"Minor Outage","date":"2026-03-10 10:00"}`},
		{"bad date", `{"service":"svc","title":"t","severity":"Minor Outage","date":"yesterday"}`},
		{"bad severity", `{"service":"svc","title":"t","severity":"Apocalyptic","date":"2026-03-10 10:00"}`},
	}
	for _, tc := range cases {
		rec := adminReq(h, "POST", "/api/admin/incidents", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestAddIncident_UnknownService(t *testing.T) {
	h := newTestServer(t)

	rec := adminReq(h, "POST", "/api/admin/incidents",
		`{"service":"ghost","title":"t","severity":"Minor Outage","date":"2026-03-10 10:00"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAddIncident_Created(t *testing.T) {
	h := newTestServer(t)
	seedServices(t, models.Service{Name: "svc", Host: "h", Port: 1, Category: "Web"})

	rec := adminReq(h, "POST", "/api/admin/incidents",
		`{"service":"svc","title":"DB outage","description":"primary down","severity":"Critical Outage","date":"2026-03-10 14:30"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.ID <= 0 {
		t.Fatalf("expected positive id, got %s", rec.Body)
	}

	incs, _ := database.GetIncidents("", "")
	if len(incs) != 1 || incs[0].Title != "DB outage" {
		t.Errorf("incident not stored: %+v", incs)
	}
}

func TestUpdateIncident(t *testing.T) {
	h := newTestServer(t)
	id, _ := database.AddIncident("svc", "old", "", "Minor Outage", "2026-03-10 10:00")

	rec := adminReq(h, "PUT", "/api/admin/incidents",
		`{"id":999,"title":"t","severity":"Minor Outage"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown incident, got %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]any{
		"id": id, "title": "new", "description": "d", "severity": "Major Outage",
	})
	rec = adminReq(h, "PUT", "/api/admin/incidents", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	incs, _ := database.GetIncidents("", "")
	if incs[0].Title != "new" || incs[0].Severity != "Major Outage" {
		t.Errorf("update did not take: %+v", incs[0])
	}
}

func TestRemoveIncident(t *testing.T) {
	h := newTestServer(t)
	id, _ := database.AddIncident("svc", "t", "", "Minor Outage", "2026-03-10 10:00")

	body, _ := json.Marshal(map[string]any{"id": id})
	rec := adminReq(h, "DELETE", "/api/admin/incidents", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = adminReq(h, "DELETE", "/api/admin/incidents", string(body))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete should 404, got %d", rec.Code)
	}
}

// --------------- tokens ---------------

func TestGenerateToken_MissingUserID(t *testing.T) {
	h := newTestServer(t)

	rec := adminReq(h, "POST", "/api/admin/tokens", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateToken_MintedTokenWorks(t *testing.T) {
	h := newTestServer(t)

	rec := adminReq(h, "POST", "/api/admin/tokens", `{"user_id":"alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("expected token in response, got %s", rec.Body)
	}

	// The minted token authorizes read requests
	req := httptest.NewRequest("GET", "/api/statuses", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("minted token should authorize, got %d", rr.Code)
	}
}

func TestRevokeToken(t *testing.T) {
	h := newTestServer(t)
	database.CreateToken("doomed", "bob")

	rec := adminReq(h, "DELETE", "/api/admin/tokens", `{"token":"doomed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Revoked token no longer authorizes
	req := httptest.NewRequest("GET", "/api/statuses", nil)
	req.Header.Set("Authorization", "Bearer doomed")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("revoked token should be rejected, got %d", rr.Code)
	}
}

func TestRevokeToken_Unknown(t *testing.T) {
	h := newTestServer(t)

	rec := adminReq(h, "DELETE", "/api/admin/tokens", `{"token":"ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
