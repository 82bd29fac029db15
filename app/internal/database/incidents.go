package database

import (
	"time"

	"statuswatch/app/internal/models"
)

// AddIncident records a manually curated incident
func AddIncident(service, title, description, severity, date string) (int64, error) {
	res, err := DB.Exec(`
		INSERT INTO incidents (service, title, description, severity, date)
		VALUES (?, ?, ?, ?, ?)`,
		service, title, description, severity, date)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateIncident replaces an incident's fields and bumps its updated_at.
// Returns false when the incident does not exist.
func UpdateIncident(id int64, title, description, severity string) (bool, error) {
	res, err := DB.Exec(`
		UPDATE incidents SET title = ?, description = ?, severity = ?,
			updated_at = datetime('now')
		WHERE id = ?`,
		title, description, severity, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RemoveIncident deletes an incident by id. Returns false when absent.
func RemoveIncident(id int64) (bool, error) {
	res, err := DB.Exec(`DELETE FROM incidents WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetIncidents returns incidents, optionally filtered by service name
// (case-insensitive) and by date prefix (YYYY-MM-DD).
func GetIncidents(serviceName, date string) ([]models.Incident, error) {
	query := `SELECT id, service, title, description, severity, date, updated_at FROM incidents`
	var conds []string
	var args []any
	if serviceName != "" {
		conds = append(conds, `LOWER(service) = LOWER(?)`)
		args = append(args, serviceName)
	}
	if date != "" {
		conds = append(conds, `date LIKE ?`)
		args = append(args, date+"%")
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` ORDER BY date DESC`

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Incident
	for rows.Next() {
		var inc models.Incident
		if err := rows.Scan(&inc.ID, &inc.Service, &inc.Title, &inc.Description,
			&inc.Severity, &inc.Date, &inc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// PruneIncidents deletes incidents whose date lies before the cutoff.
// Incident dates are "YYYY-MM-DD HH:MM", so lexical comparison is safe.
func PruneIncidents(cutoff time.Time) (int64, error) {
	res, err := DB.Exec(`DELETE FROM incidents WHERE date < ?`,
		cutoff.Format("2006-01-02 15:04"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
