package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"statuswatch/app/internal/models"
	"statuswatch/app/internal/stats"
)

const (
	liveWriteTimeout = 10 * time.Second
	liveMinRefresh   = 5 * time.Second
)

var liveUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type livePayload struct {
	T        time.Time                  `json:"t"`
	Services []models.ServiceStatusView `json:"services"`
}

// HandleLive upgrades to a websocket and pushes the current status snapshot
// on every refresh interval until the client goes away.
func HandleLive(agg *stats.Aggregator, now func() time.Time, refresh time.Duration) http.HandlerFunc {
	if refresh < liveMinRefresh {
		refresh = liveMinRefresh
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := liveUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go serveLiveConnection(conn, agg, now, refresh)
	}
}

func serveLiveConnection(conn *websocket.Conn, agg *stats.Aggregator, now func() time.Time, refresh time.Duration) {
	defer conn.Close()

	if err := writeLivePayload(conn, agg, now()); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			// Drain client frames; an error means the peer is gone.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := writeLivePayload(conn, agg, now()); err != nil {
				return
			}
		}
	}
}

func writeLivePayload(conn *websocket.Conn, agg *stats.Aggregator, now time.Time) error {
	views, err := agg.BuildStatusViews(now)
	if err != nil {
		log.Printf("Warning: failed to build live snapshot: %v", err)
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(livePayload{T: now, Services: views})
}
