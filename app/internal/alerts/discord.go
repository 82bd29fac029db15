package alerts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Notifier sends, edits, and deletes messages on an external channel,
// identified by opaque ids.
type Notifier interface {
	Send(content string) (string, error)
	Edit(messageID, content string) error
	Delete(messageID string) error
}

// DiscordWebhook implements Notifier against a Discord webhook URL. Sending
// with ?wait=true makes the API return the created message so its id can be
// stored for later edit/delete.
type DiscordWebhook struct {
	url    string
	client *http.Client
}

// NewDiscordWebhook creates a webhook notifier
func NewDiscordWebhook(url string) *DiscordWebhook {
	return &DiscordWebhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookMessage struct {
	Content string `json:"content"`
}

// Send posts a message and returns its id
func (d *DiscordWebhook) Send(content string) (string, error) {
	body, _ := json.Marshal(webhookMessage{Content: content})
	resp, err := d.client.Post(d.url+"?wait=true", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("webhook send: status %d", resp.StatusCode)
	}

	var msg struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", err
	}
	if msg.ID == "" {
		return "", errors.New("webhook send: no message id in response")
	}
	return msg.ID, nil
}

// Edit replaces the content of an existing message
func (d *DiscordWebhook) Edit(messageID, content string) error {
	body, _ := json.Marshal(webhookMessage{Content: content})
	req, err := http.NewRequest(http.MethodPatch, d.url+"/messages/"+messageID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrMessageGone
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook edit: status %d", resp.StatusCode)
	}
	return nil
}

// Delete removes a message. A message already gone counts as success.
func (d *DiscordWebhook) Delete(messageID string) error {
	req, err := http.NewRequest(http.MethodDelete, d.url+"/messages/"+messageID, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook delete: status %d", resp.StatusCode)
	}
	return nil
}

// ErrMessageGone signals that the target message no longer exists.
var ErrMessageGone = errors.New("message no longer exists")
