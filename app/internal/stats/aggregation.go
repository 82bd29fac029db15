package stats

import (
	"time"

	"statuswatch/app/internal/cache"
	"statuswatch/app/internal/database"
	"statuswatch/app/internal/models"
)

// Periods are the supported aggregation windows, in display order.
var Periods = []string{"daily", "weekly", "monthly", "all"}

// ValidPeriod reports whether p names a supported aggregation window
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}

// Aggregator answers windowed uptime queries over the daily ledger, with a
// short-lived cache in front of the database.
type Aggregator struct {
	cache *cache.Cache
}

// NewAggregator creates an aggregator backed by the given cache
func NewAggregator(c *cache.Cache) *Aggregator {
	return &Aggregator{cache: c}
}

// CalculateUptime averages daily records per service over the given period.
// Services with no records in the window are absent from the result.
func (a *Aggregator) CalculateUptime(period string, now time.Time) ([]models.ServiceUptime, error) {
	key := "uptime:" + period + ":" + now.Format(database.DateFormat)
	if cached, ok := a.cache.Get(key); ok {
		if rows, ok := cached.([]models.ServiceUptime); ok {
			return rows, nil
		}
	}

	rows, err := database.CalculateUptime(period, now)
	if err != nil {
		return nil, err
	}

	a.cache.Set(key, rows)
	return rows, nil
}

// History returns the last N days of one service's daily records, most
// recent first.
func (a *Aggregator) History(serviceID int64, days int, now time.Time) ([]models.UptimeHistoryEntry, error) {
	return database.GetServiceUptimeHistory(serviceID, days, now)
}

// Invalidate drops cached aggregation results; called after each probe cycle
// so consumers see fresh numbers without waiting out the TTL.
func (a *Aggregator) Invalidate() {
	a.cache.DeletePrefix("uptime:")
}

// BuildStatusViews assembles the effective per-service status list served to
// consumers: ledger state, override display precedence, and the four standard
// uptime windows, ordered by category then configured order.
func (a *Aggregator) BuildStatusViews(now time.Time) ([]models.ServiceStatusView, error) {
	services, err := database.GetServices()
	if err != nil {
		return nil, err
	}
	overrides, err := database.GetManualStatuses()
	if err != nil {
		return nil, err
	}

	uptimeByPeriod := make(map[string]map[string]float64, len(Periods))
	for _, period := range Periods {
		rows, err := a.CalculateUptime(period, now)
		if err != nil {
			return nil, err
		}
		m := make(map[string]float64, len(rows))
		for _, r := range rows {
			m[r.Name] = r.AverageUptime
		}
		uptimeByPeriod[period] = m
	}

	lookup := func(period, name string) *float64 {
		if v, ok := uptimeByPeriod[period][name]; ok {
			return &v
		}
		return nil
	}

	views := make([]models.ServiceStatusView, 0, len(services))
	for _, s := range services {
		v := models.ServiceStatusView{
			ID:             s.ID,
			Name:           s.Name,
			Host:           s.Host,
			Port:           s.Port,
			Category:       s.Category,
			UptimeChecks:   s.UptimeChecks,
			DowntimeChecks: s.DowntimeChecks,
			TotalChecks:    s.TotalChecks,
			Uptimes: models.Uptimes{
				Daily:   lookup("daily", s.Name),
				Weekly:  lookup("weekly", s.Name),
				Monthly: lookup("monthly", s.Name),
				All:     lookup("all", s.Name),
			},
		}

		if o, ok := overrides[s.ID]; ok {
			v.Status = o.Status
			v.Severity = o.Severity
			v.Overridden = true
		} else if s.CurrentStatus == 1 {
			v.Status = "Online"
		} else {
			v.Status = "Offline"
		}

		views = append(views, v)
	}

	return views, nil
}
