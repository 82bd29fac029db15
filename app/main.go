package main

import (
	"log"
	"net/http"
	"time"

	"statuswatch/app/internal/alerts"
	"statuswatch/app/internal/auth"
	"statuswatch/app/internal/cache"
	"statuswatch/app/internal/config"
	"statuswatch/app/internal/database"
	"statuswatch/app/internal/handlers"
	"statuswatch/app/internal/models"
	"statuswatch/app/internal/monitor"
	"statuswatch/app/internal/ratelimit"
	"statuswatch/app/internal/scheduler"
	"statuswatch/app/internal/stats"
)

const incidentRetention = 14 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Init(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.SyncServices(catalogToServices(cfg.Services)); err != nil {
		log.Fatalf("Failed to sync services: %v", err)
	}
	log.Printf("Synced %d services from catalog", len(cfg.Services))

	statsCache := cache.New(30 * time.Second)
	agg := stats.NewAggregator(statsCache)

	var notifier alerts.Notifier
	if cfg.WebhookURL != "" {
		notifier = alerts.NewDiscordWebhook(cfg.WebhookURL)
	} else {
		log.Println("Warning: no DISCORD_WEBHOOK_URL set, alerts and panel disabled")
	}

	alertMgr := alerts.NewManager(notifier, cfg.AlertThreshold, cfg.PollInterval, cfg.AlertMention)
	if err := alertMgr.Hydrate(); err != nil {
		log.Printf("Warning: failed to hydrate alert state: %v", err)
	} else if n := alertMgr.ActiveCount(); n > 0 {
		log.Printf("Restored %d active alerts", n)
	}

	panel := alerts.NewPanel(notifier, agg)
	if err := panel.Hydrate(); err != nil {
		log.Printf("Warning: failed to load panel pointer: %v", err)
	}

	runner := monitor.NewRunner(cfg.ProbeTimeout, cfg.ProbeWorkers, alertMgr, agg)

	sched := scheduler.New(scheduler.RealClock{})
	sched.Add("probe-cycle", cfg.PollInterval, runner.RunCycle)
	sched.Add("panel-refresh", 5*time.Minute, panel.Refresh)
	sched.Add("incident-prune", 24*time.Hour, func(now time.Time) {
		n, err := database.PruneIncidents(now.Add(-incidentRetention))
		if err != nil {
			log.Printf("Warning: incident prune failed: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d old incidents", n)
		}
	})

	if cfg.EnableScheduler {
		stop := make(chan struct{})
		defer close(stop)
		sched.Start(stop)
	}

	limiter := ratelimit.New(ratelimit.Config{
		Requests: cfg.RateLimit,
		Window:   cfg.RateLimitWindow,
	})
	authMgr := auth.New(limiter, cfg.AdminHash)

	handler := handlers.SetupRoutes(authMgr, agg, sched.Clock().Now, cfg.PollInterval)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// catalogToServices maps catalog entries onto service rows for syncing
func catalogToServices(entries []config.ServiceConfig) []models.Service {
	services := make([]models.Service, 0, len(entries))
	for _, sc := range entries {
		services = append(services, models.Service{
			Name:      sc.Name,
			Host:      sc.Host,
			Port:      sc.Port,
			Category:  sc.Category,
			CheckType: sc.Type,
			SortOrder: sc.Order,
		})
	}
	return services
}
