package models

// Service is one monitored target as stored in the service_status table.
type Service struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Category  string `json:"category"`
	CheckType string `json:"check_type"`
	SortOrder int    `json:"sort_order"`

	// Ledger state, mutated once per probe cycle.
	CurrentStatus  int    `json:"current_status"` // 0=down, 1=up
	UptimeChecks   int    `json:"uptime_checks"`
	DowntimeChecks int    `json:"downtime_checks"`
	TotalChecks    int    `json:"total_checks"`
	DownSince      string `json:"down_since,omitempty"` // RFC3339, empty when up
}

// ManualStatus is an admin-declared override for one service.
type ManualStatus struct {
	ServiceID      int64  `json:"service_id"`
	Status         string `json:"status"`
	Description    string `json:"description"`
	Severity       string `json:"severity"` // Low, Medium, High, or "" (informational)
	ContinueUptime bool   `json:"continue_uptime"`
}

// DailyStatus is one service's uptime record for one calendar date.
type DailyStatus struct {
	ServiceID        int64   `json:"service_id"`
	Date             string  `json:"date"` // YYYY-MM-DD, server-local
	UptimePercentage float64 `json:"uptime_percentage"`
	Finalized        bool    `json:"finalized"`
}

// UptimeHistoryEntry is one (date, percentage) point of a service's history.
type UptimeHistoryEntry struct {
	Date             string  `json:"date"`
	UptimePercentage float64 `json:"uptime"`
}

// ServiceUptime is the averaged uptime for one service over a query window.
type ServiceUptime struct {
	Name          string  `json:"name"`
	AverageUptime float64 `json:"average_uptime"`
}

// Alert is a durable record of an active downtime alert.
type Alert struct {
	ServiceName string `json:"service_name"`
	MessageID   string `json:"message_id"`
	CreatedAt   string `json:"created_at"`
}

// Incident is a manually curated log entry, independent of the ledger.
type Incident struct {
	ID          int64  `json:"id"`
	Service     string `json:"service"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // Minor/Moderate/Major/Critical Outage
	Date        string `json:"date"`     // YYYY-MM-DD HH:MM
	UpdatedAt   string `json:"updated_at"`
}

// Token is an API bearer token owned by a user.
type Token struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

// EmbedInfo points at the externally hosted status-panel message.
type EmbedInfo struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// ServiceStatusView is the effective per-service status handed to API consumers.
type ServiceStatusView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Host           string  `json:"host"`
	Port           int     `json:"port"`
	Category       string  `json:"category"`
	Status         string  `json:"status"`   // "Online", "Offline", or override label
	Severity       string  `json:"severity"` // set only when an override is active
	Overridden     bool    `json:"overridden"`
	UptimeChecks   int     `json:"uptime_checks"`
	DowntimeChecks int     `json:"downtime_checks"`
	TotalChecks    int     `json:"total_checks"`
	Uptimes        Uptimes `json:"uptimes"`
}

// Uptimes groups the four standard aggregation windows. Nil means no data.
type Uptimes struct {
	Daily   *float64 `json:"daily"`
	Weekly  *float64 `json:"weekly"`
	Monthly *float64 `json:"monthly"`
	All     *float64 `json:"all"`
}
