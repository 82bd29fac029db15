package database

import "statuswatch/app/internal/models"

// SaveAlert records the external alert message for a service, replacing any
// previous handle so a resent alert stays deduplicated.
func SaveAlert(serviceName, messageID string) error {
	_, err := DB.Exec(`
		INSERT INTO alerts (service_name, message_id) VALUES (?, ?)
		ON CONFLICT(service_name) DO UPDATE SET message_id = excluded.message_id`,
		serviceName, messageID)
	return err
}

// GetAlerts returns all active alerts
func GetAlerts() ([]models.Alert, error) {
	rows, err := DB.Query(`SELECT service_name, message_id, created_at FROM alerts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ServiceName, &a.MessageID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAlert removes the durable alert record for a service
func DeleteAlert(serviceName string) error {
	_, err := DB.Exec(`DELETE FROM alerts WHERE service_name = ?`, serviceName)
	return err
}
