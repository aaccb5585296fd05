package domain

import "time"

// Event types
const (
	EventTypeLedgerUpdated  = "ledger.updated"
	EventTypeLedgerClosed   = "ledger.closed"
	EventTypeLedgerCreated  = "ledger.created"
	EventTypeLedgerLocked   = "ledger.locked"
	EventTypeLedgerUnlocked = "ledger.unlocked"
	EventTypeResetCompleted = "ledger.reset_completed"
)

// LedgerEvent is broadcast to the real-time layer after a ledger row
// changes. Delivery is best-effort; the engine never blocks on it.
type LedgerEvent struct {
	Type           string    `json:"type"`
	EntityType     string    `json:"entity_type,omitempty"`
	EntityID       string    `json:"entity_id,omitempty"`
	LedgerDate     string    `json:"ledger_date,omitempty"`
	ClosingBalance string    `json:"closing_balance,omitempty"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
