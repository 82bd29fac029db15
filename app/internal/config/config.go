package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port            string
	DBPath          string
	EnableScheduler bool

	// Monitoring
	PollInterval   time.Duration
	ProbeTimeout   time.Duration
	ProbeWorkers   int
	AlertThreshold time.Duration

	// API rate limiting (per token)
	RateLimit       int
	RateLimitWindow time.Duration

	// Notifications
	WebhookURL   string
	AlertMention string

	// Admin credential for mutating endpoints
	AdminHash []byte

	// Service catalog
	Services []ServiceConfig
}

// ServiceConfig describes one monitored service from the catalog file
type ServiceConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Category string `yaml:"category"`
	Type     string `yaml:"type"`
	Order    int    `yaml:"order"`
}

// serviceCatalog is the top-level shape of the services YAML file
type serviceCatalog struct {
	Services []ServiceConfig `yaml:"services"`
}

var validCheckTypes = map[string]bool{
	"none":           true,
	"web-service":    true,
	"java-server":    true,
	"bedrock-server": true,
}

// Load reads configuration from environment variables and the service catalog file
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "3000"),
		DBPath:          getenv("DB_PATH", "./status.db"),
		EnableScheduler: envBool("ENABLE_SCHEDULER", true),
		PollInterval:    envDurSecs("POLL_SECONDS", 60),
		ProbeTimeout:    envDurSecs("PROBE_TIMEOUT_SECS", 5),
		ProbeWorkers:    envInt("PROBE_WORKERS", 8),
		AlertThreshold:  time.Duration(envInt("ALERT_THRESHOLD_MINUTES", 5)) * time.Minute,
		RateLimit:       envInt("RATE_LIMIT", 60),
		RateLimitWindow: envDurSecs("RATE_LIMIT_WINDOW_SECONDS", 60),
		WebhookURL:      getenv("DISCORD_WEBHOOK_URL", ""),
		AlertMention:    getenv("ALERT_MENTION", ""),
	}

	// Admin password: accept a pre-computed bcrypt hash, or hash at startup
	if hp := getenv("ADMIN_PASSWORD_BCRYPT", ""); hp != "" {
		cfg.AdminHash = []byte(hp)
	} else if pw := getenv("ADMIN_PASSWORD", ""); pw != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cfg.AdminHash = h
	} else {
		log.Println("Warning: no ADMIN_PASSWORD set, admin endpoints disabled")
	}

	services, err := LoadServiceCatalog(getenv("SERVICES_FILE", "services.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Services = services

	return cfg, nil
}

// LoadServiceCatalog reads and validates the YAML service catalog
func LoadServiceCatalog(path string) ([]ServiceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading service catalog: %w", err)
	}

	var catalog serviceCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parsing service catalog: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Services))
	for i := range catalog.Services {
		sc := &catalog.Services[i]
		if sc.Name == "" {
			return nil, fmt.Errorf("service #%d: missing name", i+1)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("service %q: duplicate name", sc.Name)
		}
		seen[sc.Name] = true
		if sc.Host == "" {
			return nil, fmt.Errorf("service %q: missing host", sc.Name)
		}
		if sc.Port <= 0 || sc.Port > 65535 {
			return nil, fmt.Errorf("service %q: invalid port %d", sc.Name, sc.Port)
		}
		if sc.Type == "" {
			sc.Type = "none"
		}
		if !validCheckTypes[sc.Type] {
			return nil, fmt.Errorf("service %q: unknown type %q", sc.Name, sc.Type)
		}
		if sc.Category == "" {
			sc.Category = "Other"
		}
	}

	sort.SliceStable(catalog.Services, func(i, j int) bool {
		a, b := catalog.Services[i], catalog.Services[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Order < b.Order
	})

	return catalog.Services, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return def
}

func envDurSecs(key string, defSecs int) time.Duration {
	return time.Duration(envInt(key, defSecs)) * time.Second
}
