package models

import "time"

// ReconcileEvent is a single entry in the reconciliation audit log.
type ReconcileEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	ProfileID   int       `json:"profile_id,omitempty"` // 0 for run-level events
	Type        string    `json:"type"`                 // INACTIVE | ACTION | SKIPPED | ERROR
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
