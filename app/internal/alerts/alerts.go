package alerts

import (
	"fmt"
	"log"
	"sync"
	"time"

	"statuswatch/app/internal/database"
)

// Manager drives the downtime alert lifecycle per service:
// healthy -> pending (down, under threshold) -> active (alert sent).
// Active alerts are durable, so a restart reconciles against the alerts
// table instead of re-sending.
type Manager struct {
	notifier  Notifier
	threshold time.Duration
	interval  time.Duration
	mention   string

	mu     sync.Mutex
	active map[string]string // service name -> message id
}

// NewManager creates an alert manager. interval is the probe cycle length:
// the first failed probe already represents one interval of downtime, so it
// counts toward the threshold. notifier may be nil, in which case no alerts
// are emitted (alerting unconfigured).
func NewManager(notifier Notifier, threshold, interval time.Duration, mention string) *Manager {
	return &Manager{
		notifier:  notifier,
		threshold: threshold,
		interval:  interval,
		mention:   mention,
		active:    make(map[string]string),
	}
}

// Hydrate loads durable alert records into the in-memory tracking map so
// active alerts survive a process restart.
func (m *Manager) Hydrate() error {
	alerts, err := database.GetAlerts()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range alerts {
		m.active[a.ServiceName] = a.MessageID
	}
	return nil
}

// ActiveCount returns the number of services with an active alert
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Check observes one service's effective status for this cycle. downSince is
// the RFC3339 timestamp of the up->down transition ("" when up); it is
// persisted by the ledger, so the threshold keeps counting across restarts.
// Send and delete failures are logged and retried on the next cycle.
func (m *Manager) Check(serviceName, downSince string, up bool, now time.Time) {
	if m.notifier == nil {
		return
	}

	m.mu.Lock()
	messageID, hasAlert := m.active[serviceName]
	m.mu.Unlock()

	if up {
		if !hasAlert {
			return
		}
		if err := m.notifier.Delete(messageID); err != nil {
			log.Printf("Warning: failed to delete alert for %s: %v", serviceName, err)
			return
		}
		if err := database.DeleteAlert(serviceName); err != nil {
			log.Printf("Warning: failed to remove alert record for %s: %v", serviceName, err)
		}
		m.mu.Lock()
		delete(m.active, serviceName)
		m.mu.Unlock()
		log.Printf("Alert cleared for service: %s", serviceName)
		return
	}

	if hasAlert || downSince == "" {
		return
	}

	since, err := time.Parse(time.RFC3339, downSince)
	if err != nil {
		log.Printf("Warning: bad down_since for %s: %v", serviceName, err)
		return
	}
	downFor := now.Sub(since) + m.interval
	if downFor < m.threshold {
		return
	}

	content := fmt.Sprintf("Alert! Service **%s** is down (%d minutes).",
		serviceName, int(downFor.Minutes()))
	if m.mention != "" {
		content = m.mention + " " + content
	}

	id, err := m.notifier.Send(content)
	if err != nil {
		log.Printf("Warning: failed to send alert for %s: %v", serviceName, err)
		return
	}
	if err := database.SaveAlert(serviceName, id); err != nil {
		log.Printf("Warning: failed to persist alert for %s: %v", serviceName, err)
	}

	m.mu.Lock()
	m.active[serviceName] = id
	m.mu.Unlock()
	log.Printf("Alert sent for service: %s", serviceName)
}
