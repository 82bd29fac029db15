package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

// --------------- LoadServiceCatalog ---------------

func TestLoadServiceCatalog_Valid(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: Plex
    host: 192.168.1.10
    port: 32400
    category: Media
    type: web-service
    order: 1
  - name: Minecraft
    host: mc.local
    port: 25565
    category: Game
    type: java-server
`)

	services, err := LoadServiceCatalog(path)
	if err != nil {
		t.Fatalf("LoadServiceCatalog failed: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(services))
	}
	// Sorted by category: Game before Media
	if services[0].Name != "Minecraft" || services[1].Name != "Plex" {
		t.Errorf("unexpected order: %s, %s", services[0].Name, services[1].Name)
	}
}

func TestLoadServiceCatalog_Defaults(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: Thing
    host: thing.local
    port: 80
`)

	services, err := LoadServiceCatalog(path)
	if err != nil {
		t.Fatalf("LoadServiceCatalog failed: %v", err)
	}
	if services[0].Type != "none" {
		t.Errorf("expected default type none, got %q", services[0].Type)
	}
	if services[0].Category != "Other" {
		t.Errorf("expected default category Other, got %q", services[0].Category)
	}
}

func TestLoadServiceCatalog_SortWithinCategory(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: second
    host: h
    port: 1
    category: Web
    order: 2
  - name: first
    host: h
    port: 2
    category: Web
    order: 1
`)

	services, _ := LoadServiceCatalog(path)
	if services[0].Name != "first" || services[1].Name != "second" {
		t.Errorf("expected order-sorted services, got %s, %s", services[0].Name, services[1].Name)
	}
}

func TestLoadServiceCatalog_DuplicateName(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: dup
    host: h
    port: 1
  - name: dup
    host: h
    port: 2
`)

	if _, err := LoadServiceCatalog(path); err == nil {
		t.Error("duplicate names should be rejected")
	}
}

func TestLoadServiceCatalog_MissingName(t *testing.T) {
	path := writeCatalog(t, `
services:
  - host: h
    port: 1
`)
	if _, err := LoadServiceCatalog(path); err == nil {
		t.Error("missing name should be rejected")
	}
}

func TestLoadServiceCatalog_MissingHost(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: svc
    port: 1
`)
	if _, err := LoadServiceCatalog(path); err == nil {
		t.Error("missing host should be rejected")
	}
}

func TestLoadServiceCatalog_InvalidPort(t *testing.T) {
	for _, port := range []string{"0", "-1", "70000"} {
		path := writeCatalog(t, `
services:
  - name: svc
    host: h
    port: `+port+`
`)
		if _, err := LoadServiceCatalog(path); err == nil {
			t.Errorf("port %s should be rejected", port)
		}
	}
}

func TestLoadServiceCatalog_UnknownType(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: svc
    host: h
    port: 1
    type: quic-server
`)
	if _, err := LoadServiceCatalog(path); err == nil {
		t.Error("unknown check type should be rejected")
	}
}

func TestLoadServiceCatalog_FileMissing(t *testing.T) {
	if _, err := LoadServiceCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing catalog file should error")
	}
}

// --------------- Load ---------------

func TestLoad_Defaults(t *testing.T) {
	path := writeCatalog(t, "services: []\n")
	t.Setenv("SERVICES_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Errorf("expected 60s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.AlertThreshold != 5*time.Minute {
		t.Errorf("expected 5m alert threshold, got %v", cfg.AlertThreshold)
	}
	if len(cfg.AdminHash) != 0 {
		t.Error("admin hash should be empty without ADMIN_PASSWORD")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeCatalog(t, "services: []\n")
	t.Setenv("SERVICES_FILE", path)
	t.Setenv("PORT", "8080")
	t.Setenv("POLL_SECONDS", "30")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("RATE_LIMIT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" || cfg.PollInterval != 30*time.Second || cfg.EnableScheduler || cfg.RateLimit != 5 {
		t.Errorf("env overrides did not take: %+v", cfg)
	}
}

func TestLoad_AdminPasswordHashed(t *testing.T) {
	path := writeCatalog(t, "services: []\n")
	t.Setenv("SERVICES_FILE", path)
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword(cfg.AdminHash, []byte("hunter2")); err != nil {
		t.Errorf("stored hash should verify the password: %v", err)
	}
}

func TestLoad_AdminPasswordPrecomputed(t *testing.T) {
	h, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	path := writeCatalog(t, "services: []\n")
	t.Setenv("SERVICES_FILE", path)
	t.Setenv("ADMIN_PASSWORD_BCRYPT", string(h))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(cfg.AdminHash) != string(h) {
		t.Error("precomputed hash should be used verbatim")
	}
}

// --------------- env helpers ---------------

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	if got := envInt("TEST_INT", 7); got != 7 {
		t.Errorf("invalid int should fall back to default, got %d", got)
	}
}

func TestEnvBool_Forms(t *testing.T) {
	t.Setenv("TEST_BOOL", "TRUE")
	if !envBool("TEST_BOOL", false) {
		t.Error("TRUE should parse as true")
	}
	t.Setenv("TEST_BOOL", "1")
	if !envBool("TEST_BOOL", false) {
		t.Error("1 should parse as true")
	}
	t.Setenv("TEST_BOOL", "no")
	if envBool("TEST_BOOL", true) {
		t.Error("unrecognized value should be false")
	}
}
