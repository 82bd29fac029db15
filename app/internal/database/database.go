package database

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// DB is the global database instance
var DB *sql.DB

// Init initializes the database connection and creates schema
func Init(dbPath string) error {
	var err error
	DB, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	// The probe cycle and HTTP handlers share this connection pool; SQLite
	// serializes writers, so a single connection avoids SQLITE_BUSY churn.
	DB.SetMaxOpenConns(1)

	return EnsureSchema()
}

// EnsureSchema creates all necessary database tables
func EnsureSchema() error {
	_, err := DB.Exec(`
CREATE TABLE IF NOT EXISTS service_status (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  host TEXT NOT NULL,
  port INTEGER NOT NULL,
  category TEXT NOT NULL,
  check_type TEXT NOT NULL DEFAULT 'none',
  sort_order INTEGER NOT NULL DEFAULT 0,
  current_status INTEGER NOT NULL DEFAULT 0,
  uptime_checks INTEGER NOT NULL DEFAULT 0,
  downtime_checks INTEGER NOT NULL DEFAULT 0,
  total_checks INTEGER NOT NULL DEFAULT 0,
  down_since TEXT
);

CREATE TABLE IF NOT EXISTS manual_statuses (
  service_id INTEGER PRIMARY KEY,
  status TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  severity TEXT NOT NULL DEFAULT '',
  continue_uptime INTEGER NOT NULL DEFAULT 1,
  FOREIGN KEY (service_id) REFERENCES service_status(id)
);

CREATE TABLE IF NOT EXISTS daily_status (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  service_id INTEGER NOT NULL,
  date TEXT NOT NULL,
  uptime_percentage REAL NOT NULL DEFAULT 0,
  finalized INTEGER NOT NULL DEFAULT 0,
  UNIQUE(service_id, date),
  FOREIGN KEY (service_id) REFERENCES service_status(id)
);
CREATE INDEX IF NOT EXISTS idx_daily_status_date ON daily_status(date);

CREATE TABLE IF NOT EXISTS status_embeds (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  channel_id TEXT NOT NULL,
  message_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  token TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS alerts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  service_name TEXT NOT NULL UNIQUE,
  message_id TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS incidents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  service TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  severity TEXT NOT NULL,
  date TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_incidents_service ON incidents(service);

CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	return err
}

// GetMeta returns the value for a meta key, or "" when unset
func GetMeta(key string) (string, error) {
	var v string
	err := DB.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetMeta stores a meta key/value pair
func SetMeta(key, value string) error {
	_, err := DB.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
