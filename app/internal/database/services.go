package database

import (
	"database/sql"
	"strings"
	"time"

	"statuswatch/app/internal/models"
)

// SyncServices upserts the configured services by name and removes services
// that are no longer configured, together with their overrides and alerts.
// Counters of surviving services are untouched.
func SyncServices(services []models.Service) error {
	tx, err := DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range services {
		_, err := tx.Exec(`
			INSERT INTO service_status (name, host, port, category, check_type, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				host = excluded.host,
				port = excluded.port,
				category = excluded.category,
				check_type = excluded.check_type,
				sort_order = excluded.sort_order`,
			s.Name, s.Host, s.Port, s.Category, s.CheckType, s.SortOrder)
		if err != nil {
			return err
		}
	}

	names := make([]string, 0, len(services))
	args := make([]any, 0, len(services))
	for _, s := range services {
		names = append(names, "?")
		args = append(args, s.Name)
	}
	placeholders := strings.Join(names, ",")
	if placeholders == "" {
		placeholders = "''"
	}

	if _, err := tx.Exec(`DELETE FROM manual_statuses WHERE service_id IN
		(SELECT id FROM service_status WHERE name NOT IN (`+placeholders+`))`, args...); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM alerts WHERE service_name NOT IN (`+placeholders+`)`, args...); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM service_status WHERE name NOT IN (`+placeholders+`)`, args...); err != nil {
		return err
	}

	return tx.Commit()
}

// GetServices returns all services ordered by category then configured order
func GetServices() ([]models.Service, error) {
	rows, err := DB.Query(`
		SELECT id, name, host, port, category, check_type, sort_order,
		       current_status, uptime_checks, downtime_checks, total_checks, down_since
		FROM service_status
		ORDER BY category, sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetServiceByID returns one service, or nil when it does not exist
func GetServiceByID(id int64) (*models.Service, error) {
	row := DB.QueryRow(`
		SELECT id, name, host, port, category, check_type, sort_order,
		       current_status, uptime_checks, downtime_checks, total_checks, down_since
		FROM service_status WHERE id = ?`, id)
	return scanServiceRow(row)
}

// GetServiceByName returns one service, or nil when it does not exist
func GetServiceByName(name string) (*models.Service, error) {
	row := DB.QueryRow(`
		SELECT id, name, host, port, category, check_type, sort_order,
		       current_status, uptime_checks, downtime_checks, total_checks, down_since
		FROM service_status WHERE name = ?`, name)
	return scanServiceRow(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(r rowScanner) (models.Service, error) {
	var s models.Service
	var downSince sql.NullString
	err := r.Scan(&s.ID, &s.Name, &s.Host, &s.Port, &s.Category, &s.CheckType,
		&s.SortOrder, &s.CurrentStatus, &s.UptimeChecks, &s.DowntimeChecks,
		&s.TotalChecks, &downSince)
	if err != nil {
		return s, err
	}
	s.DownSince = downSince.String
	return s, nil
}

func scanServiceRow(row *sql.Row) (*models.Service, error) {
	s, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyCheckResult folds one probe cycle's effective status into the ledger.
// A single statement keeps the read-modify-write atomic with respect to the
// daily rollover transaction.
func ApplyCheckResult(serviceID int64, up bool, now time.Time) error {
	status := 0
	upDelta, downDelta := 0, 1
	if up {
		status = 1
		upDelta, downDelta = 1, 0
	}

	var res sql.Result
	var err error
	if up {
		res, err = DB.Exec(`
			UPDATE service_status SET
				total_checks = total_checks + 1,
				uptime_checks = uptime_checks + ?,
				downtime_checks = downtime_checks + ?,
				current_status = ?,
				down_since = NULL
			WHERE id = ?`,
			upDelta, downDelta, status, serviceID)
	} else {
		res, err = DB.Exec(`
			UPDATE service_status SET
				total_checks = total_checks + 1,
				uptime_checks = uptime_checks + ?,
				downtime_checks = downtime_checks + ?,
				current_status = ?,
				down_since = COALESCE(down_since, ?)
			WHERE id = ?`,
			upDelta, downDelta, status, now.UTC().Format(time.RFC3339), serviceID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetManualStatus creates or replaces the manual override for a service
func SetManualStatus(serviceID int64, status, description, severity string, continueUptime bool) error {
	cu := 0
	if continueUptime {
		cu = 1
	}
	_, err := DB.Exec(`
		INSERT INTO manual_statuses (service_id, status, description, severity, continue_uptime)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(service_id) DO UPDATE SET
			status = excluded.status,
			description = excluded.description,
			severity = excluded.severity,
			continue_uptime = excluded.continue_uptime`,
		serviceID, status, description, severity, cu)
	return err
}

// UnsetManualStatus removes the manual override for a service.
// Returns false when no override existed.
func UnsetManualStatus(serviceID int64) (bool, error) {
	res, err := DB.Exec(`DELETE FROM manual_statuses WHERE service_id = ?`, serviceID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetManualStatus returns the override for a service, or nil when none is set
func GetManualStatus(serviceID int64) (*models.ManualStatus, error) {
	var m models.ManualStatus
	var cu int
	err := DB.QueryRow(`
		SELECT service_id, status, description, severity, continue_uptime
		FROM manual_statuses WHERE service_id = ?`, serviceID).
		Scan(&m.ServiceID, &m.Status, &m.Description, &m.Severity, &cu)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.ContinueUptime = cu != 0
	return &m, nil
}

// GetManualStatuses returns all overrides keyed by service id
func GetManualStatuses() (map[int64]models.ManualStatus, error) {
	rows, err := DB.Query(`
		SELECT service_id, status, description, severity, continue_uptime
		FROM manual_statuses`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]models.ManualStatus)
	for rows.Next() {
		var m models.ManualStatus
		var cu int
		if err := rows.Scan(&m.ServiceID, &m.Status, &m.Description, &m.Severity, &cu); err != nil {
			return nil, err
		}
		m.ContinueUptime = cu != 0
		out[m.ServiceID] = m
	}
	return out, rows.Err()
}
