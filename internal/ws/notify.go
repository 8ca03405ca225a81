package ws

import (
	"encoding/json"
	"time"

	"skill-ladder/internal/usecase"
)

type LevelsMigratedEvent struct {
	Type      string `json:"type"`
	Operation string `json:"operation"`
	Checked   int    `json:"checked"`
	Changed   int    `json:"changed"`
	Skipped   int    `json:"skipped"`
	Timestamp string `json:"timestamp"`
}

// NotifyLevelsMigrated lets the hub serve as the migration engine's notifier.
func (h *Hub) NotifyLevelsMigrated(res usecase.BatchResult) {
	if h == nil {
		return
	}
	evt := LevelsMigratedEvent{
		Type:      "levels_migrated",
		Operation: res.Operation,
		Checked:   res.Checked,
		Changed:   res.Changed,
		Skipped:   res.Skipped,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(b)
}
