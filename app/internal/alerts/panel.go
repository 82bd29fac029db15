package alerts

import (
	"fmt"
	"log"
	"strings"
	"time"

	"statuswatch/app/internal/database"
	"statuswatch/app/internal/models"
	"statuswatch/app/internal/stats"
)

// Panel maintains a single externally hosted status message, edited in place
// each refresh. The message pointer is persisted so the same message is
// reused across restarts.
type Panel struct {
	notifier   Notifier
	aggregator *stats.Aggregator

	messageID string
}

// NewPanel creates a panel updater. notifier may be nil (panel disabled).
func NewPanel(notifier Notifier, aggregator *stats.Aggregator) *Panel {
	return &Panel{notifier: notifier, aggregator: aggregator}
}

// Hydrate loads the persisted panel message pointer, if any
func (p *Panel) Hydrate() error {
	info, err := database.GetEmbedInfo()
	if err != nil {
		return err
	}
	if info != nil {
		p.messageID = info.MessageID
	}
	return nil
}

// Refresh renders the current statuses and edits the panel message, creating
// it when none exists yet.
func (p *Panel) Refresh(now time.Time) {
	if p.notifier == nil {
		return
	}

	views, err := p.aggregator.BuildStatusViews(now)
	if err != nil {
		log.Printf("Warning: failed to build panel statuses: %v", err)
		return
	}

	content := renderPanel(views, now)

	if p.messageID != "" {
		err := p.notifier.Edit(p.messageID, content)
		if err == nil {
			return
		}
		if err != ErrMessageGone {
			log.Printf("Warning: failed to edit status panel: %v", err)
			return
		}
		// Message was deleted externally, fall through and recreate it.
		p.messageID = ""
	}

	id, err := p.notifier.Send(content)
	if err != nil {
		log.Printf("Warning: failed to create status panel: %v", err)
		return
	}
	p.messageID = id
	if err := database.SaveEmbedInfo("webhook", id); err != nil {
		log.Printf("Warning: failed to persist panel pointer: %v", err)
	}
}

func renderPanel(views []models.ServiceStatusView, now time.Time) string {
	var b strings.Builder
	b.WriteString("**Service Status**\n")

	lastCategory := ""
	for _, v := range views {
		if v.Category != lastCategory {
			fmt.Fprintf(&b, "\n__%s__\n", v.Category)
			lastCategory = v.Category
		}

		marker := markerFor(v)
		fmt.Fprintf(&b, "%s **%s** — %s", marker, v.Name, v.Status)
		if all := v.Uptimes.All; all != nil {
			fmt.Fprintf(&b, " (%.2f%% all-time)", *all)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nLast updated: %s", now.Format("2006-01-02 15:04:05"))
	return b.String()
}

func markerFor(v models.ServiceStatusView) string {
	if v.Overridden {
		switch strings.ToLower(v.Severity) {
		case "low":
			return "🟡"
		case "medium":
			return "🟠"
		case "high":
			return "🔴"
		default:
			return "⚪"
		}
	}
	if v.Status == "Online" {
		return "🟢"
	}
	return "🔴"
}
