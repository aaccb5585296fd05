package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records a state-changing operation or validation failure.
// Writes are best-effort: a failed audit insert never rolls back the
// operation that produced it.
type AuditLog struct {
	ID         string
	Operation  string
	EntityType string
	EntityID   string
	Data       JSON
	Result     string
	ActorID    string
	CreatedAt  time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditOperation names auditable operations.
type AuditOperation string

const (
	AuditOpDeposit     AuditOperation = "transaction.deposit"
	AuditOpWithdrawal  AuditOperation = "transaction.withdrawal"
	AuditOpTopUp       AuditOperation = "transaction.topup"
	AuditOpBonus       AuditOperation = "transaction.bonus"
	AuditOpDailyReset  AuditOperation = "ledger.daily_reset"
	AuditOpManualReset AuditOperation = "ledger.manual_reset"
	AuditOpLock        AuditOperation = "ledger.lock"
	AuditOpUnlock      AuditOperation = "ledger.unlock"
	AuditOpValidate    AuditOperation = "ledger.validate"
	AuditOpRecalculate AuditOperation = "ledger.recalculate"
)

// AuditResult represents the outcome of an audited operation.
type AuditResult string

const (
	AuditResultSuccess AuditResult = "success"
	AuditResultFailure AuditResult = "failure"
	AuditResultError   AuditResult = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID    string
	Operation  string
	EntityType string
	EntityID   string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}
