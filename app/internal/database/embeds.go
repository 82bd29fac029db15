package database

import (
	"database/sql"

	"statuswatch/app/internal/models"
)

// SaveEmbedInfo stores the pointer to the externally hosted status panel
func SaveEmbedInfo(channelID, messageID string) error {
	_, err := DB.Exec(`INSERT INTO status_embeds (channel_id, message_id) VALUES (?, ?)`,
		channelID, messageID)
	return err
}

// GetEmbedInfo returns the most recently saved panel pointer, or nil
func GetEmbedInfo() (*models.EmbedInfo, error) {
	var e models.EmbedInfo
	err := DB.QueryRow(`SELECT channel_id, message_id FROM status_embeds
		ORDER BY id DESC LIMIT 1`).Scan(&e.ChannelID, &e.MessageID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
