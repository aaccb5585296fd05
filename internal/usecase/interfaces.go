package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
)

// LedgerFilter narrows daily ledger queries.
type LedgerFilter struct {
	EntityID string
	DateFrom *time.Time
	DateTo   *time.Time
	Status   domain.LedgerStatus
	Limit    int
	Offset   int
}

// TransactionFilter narrows transaction log queries.
type TransactionFilter struct {
	EntityType    domain.EntityType
	EntityID      string
	DateFrom      *time.Time
	DateTo        *time.Time
	ReferenceType domain.ReferenceType
	Limit         int
	Offset        int
}

// PanelLedgerRepository defines data access for panel daily ledger rows.
type PanelLedgerRepository interface {
	Get(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error)
	GetForUpdate(ctx context.Context, tx Transaction, panelID string, date time.Time) (*domain.PanelLedger, error)
	Create(ctx context.Context, tx Transaction, row *domain.PanelLedger) error
	Update(ctx context.Context, tx Transaction, row *domain.PanelLedger) error
	SetStatus(ctx context.Context, panelID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error
	List(ctx context.Context, filter LedgerFilter) ([]*domain.PanelLedger, error)
	ListByDate(ctx context.Context, date time.Time, status domain.LedgerStatus) ([]*domain.PanelLedger, error)

	// Daily reset steps. Each is idempotent so a failed reset can be re-run.
	CloseAllForDate(ctx context.Context, tx Transaction, date time.Time, closedAt time.Time) (int64, error)
	CreateForDate(ctx context.Context, tx Transaction, date time.Time, createdAt time.Time) (int64, error)
	CarryForward(ctx context.Context, tx Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error)
	ResetCounters(ctx context.Context, tx Transaction, date time.Time, updatedAt time.Time) (int64, error)
	CountForDate(ctx context.Context, date time.Time) (int64, error)
	CountClosedForDate(ctx context.Context, date time.Time) (int64, error)
}

// BankLedgerRepository defines data access for bank daily ledger rows.
type BankLedgerRepository interface {
	Get(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	GetForUpdate(ctx context.Context, tx Transaction, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	Create(ctx context.Context, tx Transaction, row *domain.BankLedger) error
	Update(ctx context.Context, tx Transaction, row *domain.BankLedger) error
	SetStatus(ctx context.Context, bankAccountID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error
	List(ctx context.Context, filter LedgerFilter) ([]*domain.BankLedger, error)
	ListByDate(ctx context.Context, date time.Time, status domain.LedgerStatus) ([]*domain.BankLedger, error)

	CloseAllForDate(ctx context.Context, tx Transaction, date time.Time, closedAt time.Time) (int64, error)
	CreateForDate(ctx context.Context, tx Transaction, date time.Time, createdAt time.Time) (int64, error)
	CarryForward(ctx context.Context, tx Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error)
	ResetCounters(ctx context.Context, tx Transaction, date time.Time, updatedAt time.Time) (int64, error)
	CountForDate(ctx context.Context, date time.Time) (int64, error)
	CountClosedForDate(ctx context.Context, date time.Time) (int64, error)
}

// TransactionLogRepository defines data access for the append-only transaction log.
type TransactionLogRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.TransactionLogEntry) error
	List(ctx context.Context, filter TransactionFilter) ([]*domain.TransactionLogEntry, error)
	ExistsByReference(ctx context.Context, referenceType domain.ReferenceType, referenceID string) (bool, error)
}

// PlayerRepository defines data access for player live balances.
type PlayerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Player, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Player, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	CreateTransaction(ctx context.Context, tx Transaction, ptx *domain.PlayerTransaction) error
}

// EntityRepository defines data access for panel and bank account master rows.
type EntityRepository interface {
	GetPanel(ctx context.Context, id string) (*domain.Panel, error)
	GetBankAccount(ctx context.Context, id string) (*domain.BankAccount, error)
	CountActivePanels(ctx context.Context) (int64, error)
	CountActiveBankAccounts(ctx context.Context) (int64, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs a unit of work after transient store conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Notifier broadcasts ledger change events to the real-time layer.
// Implementations must never block the caller.
type Notifier interface {
	Publish(event domain.LedgerEvent)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage (UTR deduplication at
// the API seam).
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Instrumentation receives engine-level metric signals.
type Instrumentation interface {
	TransactionProcessed(referenceType string)
	TransactionFailed(referenceType string)
	ConsistencyWarning(entityType string)
	ResetCompleted()
	AuditWriteFailed()
}

// NopInstrumentation discards all signals.
type NopInstrumentation struct{}

func (NopInstrumentation) TransactionProcessed(string) {}
func (NopInstrumentation) TransactionFailed(string)    {}
func (NopInstrumentation) ConsistencyWarning(string)   {}
func (NopInstrumentation) ResetCompleted()             {}
func (NopInstrumentation) AuditWriteFailed()           {}
