package stats

import (
	"time"

	"statuswatch/app/internal/database"
	"statuswatch/app/internal/models"
)

// EffectiveStatus resolves override precedence for uptime accounting: an
// active override with continue_uptime=false forces the cycle down, anything
// else passes the probe result through. The override label still wins for
// display regardless of this result.
func EffectiveStatus(override *models.ManualStatus, probeOK bool) bool {
	if override != nil && !override.ContinueUptime {
		return false
	}
	return probeOK
}

// RecordCycle folds one probe result into a service's ledger entry and
// returns the effective up/down status that was accounted.
func RecordCycle(serviceID int64, override *models.ManualStatus, probeOK bool, now time.Time) (bool, error) {
	up := EffectiveStatus(override, probeOK)
	if err := database.ApplyCheckResult(serviceID, up, now); err != nil {
		return up, err
	}
	return up, nil
}

// RecordDaily upserts the service's running daily uptime percentage for the
// current date. A service with zero checks records 0%.
func RecordDaily(serviceID int64, now time.Time) error {
	svc, err := database.GetServiceByID(serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}

	pct := 0.0
	if svc.TotalChecks > 0 {
		pct = float64(svc.UptimeChecks) / float64(svc.TotalChecks) * 100
	}

	return database.UpsertDailyStatus(serviceID, now.Format(database.DateFormat), pct)
}

// Rollover finalizes yesterday's records and resets counters once per
// calendar date. Safe to call every cycle.
func Rollover(now time.Time) (bool, error) {
	return database.Rollover(now.Format(database.DateFormat))
}
