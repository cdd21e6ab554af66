package model

import "time"

// JournalEventType identifies the type of install journal event.
type JournalEventType string

const (
	EventInstallStart    JournalEventType = "install_start"
	EventStateChange     JournalEventType = "state_change"
	EventDriverSkipped   JournalEventType = "driver_skipped"
	EventInstallComplete JournalEventType = "install_complete"
	EventInstallFailed   JournalEventType = "install_failed"
)

// JournalRecord is a single line in the install journal (JSONL format).
type JournalRecord struct {
	Timestamp   time.Time        `json:"timestamp"`
	EventType   JournalEventType `json:"event_type"`
	InstallID   string           `json:"install_id,omitempty"`
	Destination string           `json:"destination,omitempty"`
	State       InstallState     `json:"state,omitempty"`
	Details     map[string]any   `json:"details,omitempty"`
	PrevHash    HashValue        `json:"prev_hash"`
	RecordHash  HashValue        `json:"record_hash"`
}
