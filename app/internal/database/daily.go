package database

import (
	"database/sql"
	"time"

	"statuswatch/app/internal/models"
)

// DateFormat is the calendar-date layout used throughout the daily ledger.
const DateFormat = "2006-01-02"

const metaLastRollover = "last_rollover_date"

// UpsertDailyStatus writes a service's running uptime percentage into the
// record for the given date. Finalized records are never touched.
func UpsertDailyStatus(serviceID int64, date string, pct float64) error {
	_, err := DB.Exec(`
		INSERT INTO daily_status (service_id, date, uptime_percentage)
		VALUES (?, ?, ?)
		ON CONFLICT(service_id, date) DO UPDATE SET
			uptime_percentage = excluded.uptime_percentage
		WHERE daily_status.finalized = 0`,
		serviceID, date, pct)
	return err
}

// Rollover finalizes every daily record dated before today and zeroes all
// running counters, exactly once per calendar date. Returns true when the
// boundary work ran, false when today was already rolled over.
func Rollover(today string) (bool, error) {
	tx, err := DB.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var last string
	err = tx.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaLastRollover).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	if last == today {
		return false, nil
	}

	if _, err := tx.Exec(`UPDATE daily_status SET finalized = 1 WHERE date < ? AND finalized = 0`, today); err != nil {
		return false, err
	}
	if _, err := tx.Exec(`UPDATE service_status SET uptime_checks = 0, downtime_checks = 0, total_checks = 0`); err != nil {
		return false, err
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, metaLastRollover, today); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// CalculateUptime averages daily uptime percentages per service over a window.
// period selects the lower date bound: daily (today only), weekly (last 7
// calendar days inclusive of today), monthly (first of the current month),
// all (no bound). Services without records in the window are absent from the
// result, which is how callers distinguish "no data" from 0%.
func CalculateUptime(period string, now time.Time) ([]models.ServiceUptime, error) {
	query := `
		SELECT s.name, AVG(d.uptime_percentage) AS average_uptime
		FROM daily_status d
		JOIN service_status s ON d.service_id = s.id`

	var args []any
	switch period {
	case "daily":
		query += ` WHERE d.date = ?`
		args = append(args, now.Format(DateFormat))
	case "weekly":
		query += ` WHERE d.date >= ?`
		args = append(args, now.AddDate(0, 0, -6).Format(DateFormat))
	case "monthly":
		query += ` WHERE d.date >= ?`
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		args = append(args, firstOfMonth.Format(DateFormat))
	case "all":
		// no bound
	}

	query += ` GROUP BY s.name ORDER BY s.category, s.sort_order, s.name`

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceUptime
	for rows.Next() {
		var u models.ServiceUptime
		if err := rows.Scan(&u.Name, &u.AverageUptime); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetServiceUptimeHistory returns the last N days of a service's daily
// records, most recent first.
func GetServiceUptimeHistory(serviceID int64, days int, now time.Time) ([]models.UptimeHistoryEntry, error) {
	since := now.AddDate(0, 0, -days).Format(DateFormat)

	rows, err := DB.Query(`
		SELECT date, uptime_percentage
		FROM daily_status
		WHERE service_id = ? AND date >= ?
		ORDER BY date DESC`,
		serviceID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UptimeHistoryEntry
	for rows.Next() {
		var e models.UptimeHistoryEntry
		if err := rows.Scan(&e.Date, &e.UptimePercentage); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DateStatus is a service's daily record joined with its identity, as served
// by the statuses-by-date endpoint.
type DateStatus struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	UptimePercentage float64 `json:"uptime_percentage"`
	CurrentStatus    int     `json:"current_status"`
}

// GetStatusesByDate returns every service's daily record for one date
func GetStatusesByDate(date string) ([]DateStatus, error) {
	rows, err := DB.Query(`
		SELECT s.name, s.category, d.uptime_percentage, s.current_status
		FROM daily_status d
		JOIN service_status s ON d.service_id = s.id
		WHERE d.date = ?
		ORDER BY s.category, s.sort_order, s.name`,
		date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DateStatus
	for rows.Next() {
		var d DateStatus
		if err := rows.Scan(&d.Name, &d.Category, &d.UptimePercentage, &d.CurrentStatus); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDailyStatus returns one service's record for one date, or nil
func GetDailyStatus(serviceID int64, date string) (*models.DailyStatus, error) {
	var d models.DailyStatus
	var fin int
	err := DB.QueryRow(`
		SELECT service_id, date, uptime_percentage, finalized
		FROM daily_status WHERE service_id = ? AND date = ?`,
		serviceID, date).Scan(&d.ServiceID, &d.Date, &d.UptimePercentage, &fin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.Finalized = fin != 0
	return &d, nil
}
