package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

func rowKey(entityID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", entityID, date.Format("2006-01-02"))
}

// MockPanelLedgerRepository is an in-memory mock of PanelLedgerRepository.
type MockPanelLedgerRepository struct {
	mu   sync.RWMutex
	rows map[string]*domain.PanelLedger

	GetFunc             func(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error)
	GetForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, panelID string, date time.Time) (*domain.PanelLedger, error)
	CreateFunc          func(ctx context.Context, tx usecase.Transaction, row *domain.PanelLedger) error
	UpdateFunc          func(ctx context.Context, tx usecase.Transaction, row *domain.PanelLedger) error
	SetStatusFunc       func(ctx context.Context, panelID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error
	CloseAllForDateFunc func(ctx context.Context, tx usecase.Transaction, date time.Time, closedAt time.Time) (int64, error)
	CreateForDateFunc   func(ctx context.Context, tx usecase.Transaction, date time.Time, createdAt time.Time) (int64, error)
	CarryForwardFunc    func(ctx context.Context, tx usecase.Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error)
	ResetCountersFunc   func(ctx context.Context, tx usecase.Transaction, date time.Time, updatedAt time.Time) (int64, error)
}

func NewMockPanelLedgerRepository() *MockPanelLedgerRepository {
	return &MockPanelLedgerRepository{rows: make(map[string]*domain.PanelLedger)}
}

// Seed installs a row directly, bypassing the repository contract.
func (m *MockPanelLedgerRepository) Seed(row *domain.PanelLedger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(row.PanelID, row.LedgerDate)] = row
}

func (m *MockPanelLedgerRepository) Get(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, panelID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row, ok := m.rows[rowKey(panelID, date)]; ok {
		return row, nil
	}
	return nil, domain.ErrLedgerNotFound
}

func (m *MockPanelLedgerRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, panelID string, date time.Time) (*domain.PanelLedger, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, panelID, date)
	}
	return m.Get(ctx, panelID, date)
}

func (m *MockPanelLedgerRepository) Create(ctx context.Context, tx usecase.Transaction, row *domain.PanelLedger) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(row.PanelID, row.LedgerDate)] = row
	return nil
}

func (m *MockPanelLedgerRepository) Update(ctx context.Context, tx usecase.Transaction, row *domain.PanelLedger) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(row.PanelID, row.LedgerDate)] = row
	return nil
}

func (m *MockPanelLedgerRepository) SetStatus(ctx context.Context, panelID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, panelID, date, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[rowKey(panelID, date)]
	if !ok {
		return domain.ErrLedgerNotFound
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	return nil
}

func (m *MockPanelLedgerRepository) List(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.PanelLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PanelLedger
	for _, row := range m.rows {
		if filter.EntityID != "" && row.PanelID != filter.EntityID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MockPanelLedgerRepository) ListByDate(ctx context.Context, date time.Time, status domain.LedgerStatus) ([]*domain.PanelLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PanelLedger
	for _, row := range m.rows {
		if !row.LedgerDate.Equal(date) {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MockPanelLedgerRepository) CloseAllForDate(ctx context.Context, tx usecase.Transaction, date time.Time, closedAt time.Time) (int64, error) {
	if m.CloseAllForDateFunc != nil {
		return m.CloseAllForDateFunc(ctx, tx, date, closedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.LedgerDate.Equal(date) && row.Status == domain.StatusOpen {
			row.Status = domain.StatusClosed
			row.UpdatedAt = closedAt
			n++
		}
	}
	return n, nil
}

func (m *MockPanelLedgerRepository) CreateForDate(ctx context.Context, tx usecase.Transaction, date time.Time, createdAt time.Time) (int64, error) {
	if m.CreateForDateFunc != nil {
		return m.CreateForDateFunc(ctx, tx, date, createdAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	for _, row := range m.rows {
		seen[row.PanelID] = seen[row.PanelID] || row.LedgerDate.Equal(date)
	}
	var n int64
	for panelID, hasRow := range seen {
		if hasRow {
			continue
		}
		m.rows[rowKey(panelID, date)] = &domain.PanelLedger{
			ID:         fmt.Sprintf("reset-%s-%s", panelID, date.Format("2006-01-02")),
			PanelID:    panelID,
			LedgerDate: date,
			Status:     domain.StatusOpen,
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		}
		n++
	}
	return n, nil
}

func (m *MockPanelLedgerRepository) CarryForward(ctx context.Context, tx usecase.Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error) {
	if m.CarryForwardFunc != nil {
		return m.CarryForwardFunc(ctx, tx, fromDate, toDate, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if !row.LedgerDate.Equal(toDate) {
			continue
		}
		prev, ok := m.rows[rowKey(row.PanelID, fromDate)]
		if !ok || prev.Status != domain.StatusClosed || row.Status != domain.StatusOpen {
			continue
		}
		row.OpeningBalance = prev.ClosingBalance
		row.ClosingBalance = prev.ClosingBalance
		row.PointsBalance = prev.PointsBalance
		row.UpdatedAt = updatedAt
		n++
	}
	return n, nil
}

func (m *MockPanelLedgerRepository) ResetCounters(ctx context.Context, tx usecase.Transaction, date time.Time, updatedAt time.Time) (int64, error) {
	if m.ResetCountersFunc != nil {
		return m.ResetCountersFunc(ctx, tx, date, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if !row.LedgerDate.Equal(date) || row.Status != domain.StatusOpen {
			continue
		}
		row.TotalDeposits = decimal.Zero
		row.TotalWithdrawals = decimal.Zero
		row.BonusPoints = decimal.Zero
		row.TopUp = decimal.Zero
		row.ProfitLoss = decimal.Zero
		row.ROI = decimal.Zero
		row.Utilization = decimal.Zero
		row.ClosingBalance = row.OpeningBalance
		row.PointsBalance = row.OpeningBalance
		row.UpdatedAt = updatedAt
		n++
	}
	return n, nil
}

func (m *MockPanelLedgerRepository) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, row := range m.rows {
		if row.LedgerDate.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (m *MockPanelLedgerRepository) CountClosedForDate(ctx context.Context, date time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, row := range m.rows {
		if row.LedgerDate.Equal(date) && row.Status == domain.StatusClosed {
			n++
		}
	}
	return n, nil
}

// MockBankLedgerRepository is an in-memory mock of BankLedgerRepository.
type MockBankLedgerRepository struct {
	mu   sync.RWMutex
	rows map[string]*domain.BankLedger

	GetFunc             func(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	GetForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	CreateFunc          func(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error
	UpdateFunc          func(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error
	SetStatusFunc       func(ctx context.Context, bankAccountID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error
	CloseAllForDateFunc func(ctx context.Context, tx usecase.Transaction, date time.Time, closedAt time.Time) (int64, error)
	CreateForDateFunc   func(ctx context.Context, tx usecase.Transaction, date time.Time, createdAt time.Time) (int64, error)
	CarryForwardFunc    func(ctx context.Context, tx usecase.Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error)
	ResetCountersFunc   func(ctx context.Context, tx usecase.Transaction, date time.Time, updatedAt time.Time) (int64, error)
}

func NewMockBankLedgerRepository() *MockBankLedgerRepository {
	return &MockBankLedgerRepository{rows: make(map[string]*domain.BankLedger)}
}

func (m *MockBankLedgerRepository) Seed(row *domain.BankLedger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(row.BankAccountID, row.LedgerDate)] = row
}

func (m *MockBankLedgerRepository) Get(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, bankAccountID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row, ok := m.rows[rowKey(bankAccountID, date)]; ok {
		return row, nil
	}
	return nil, domain.ErrLedgerNotFound
}

func (m *MockBankLedgerRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, bankAccountID, date)
	}
	return m.Get(ctx, bankAccountID, date)
}

func (m *MockBankLedgerRepository) Create(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(row.BankAccountID, row.LedgerDate)] = row
	return nil
}

func (m *MockBankLedgerRepository) Update(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rowKey(row.BankAccountID, row.LedgerDate)] = row
	return nil
}

func (m *MockBankLedgerRepository) SetStatus(ctx context.Context, bankAccountID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, bankAccountID, date, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[rowKey(bankAccountID, date)]
	if !ok {
		return domain.ErrLedgerNotFound
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	return nil
}

func (m *MockBankLedgerRepository) List(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.BankLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BankLedger
	for _, row := range m.rows {
		if filter.EntityID != "" && row.BankAccountID != filter.EntityID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MockBankLedgerRepository) ListByDate(ctx context.Context, date time.Time, status domain.LedgerStatus) ([]*domain.BankLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.BankLedger
	for _, row := range m.rows {
		if !row.LedgerDate.Equal(date) {
			continue
		}
		if status != "" && row.Status != status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MockBankLedgerRepository) CloseAllForDate(ctx context.Context, tx usecase.Transaction, date time.Time, closedAt time.Time) (int64, error) {
	if m.CloseAllForDateFunc != nil {
		return m.CloseAllForDateFunc(ctx, tx, date, closedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.LedgerDate.Equal(date) && row.Status == domain.StatusOpen {
			row.Status = domain.StatusClosed
			row.UpdatedAt = closedAt
			n++
		}
	}
	return n, nil
}

func (m *MockBankLedgerRepository) CreateForDate(ctx context.Context, tx usecase.Transaction, date time.Time, createdAt time.Time) (int64, error) {
	if m.CreateForDateFunc != nil {
		return m.CreateForDateFunc(ctx, tx, date, createdAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	for _, row := range m.rows {
		seen[row.BankAccountID] = seen[row.BankAccountID] || row.LedgerDate.Equal(date)
	}
	var n int64
	for bankAccountID, hasRow := range seen {
		if hasRow {
			continue
		}
		m.rows[rowKey(bankAccountID, date)] = &domain.BankLedger{
			ID:            fmt.Sprintf("reset-%s-%s", bankAccountID, date.Format("2006-01-02")),
			BankAccountID: bankAccountID,
			LedgerDate:    date,
			Status:        domain.StatusOpen,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		n++
	}
	return n, nil
}

func (m *MockBankLedgerRepository) CarryForward(ctx context.Context, tx usecase.Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error) {
	if m.CarryForwardFunc != nil {
		return m.CarryForwardFunc(ctx, tx, fromDate, toDate, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if !row.LedgerDate.Equal(toDate) {
			continue
		}
		prev, ok := m.rows[rowKey(row.BankAccountID, fromDate)]
		if !ok || prev.Status != domain.StatusClosed || row.Status != domain.StatusOpen {
			continue
		}
		row.OpeningBalance = prev.ClosingBalance
		row.ClosingBalance = prev.ClosingBalance
		row.UpdatedAt = updatedAt
		n++
	}
	return n, nil
}

func (m *MockBankLedgerRepository) ResetCounters(ctx context.Context, tx usecase.Transaction, date time.Time, updatedAt time.Time) (int64, error) {
	if m.ResetCountersFunc != nil {
		return m.ResetCountersFunc(ctx, tx, date, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if !row.LedgerDate.Equal(date) || row.Status != domain.StatusOpen {
			continue
		}
		row.TotalDeposits = decimal.Zero
		row.TotalWithdrawals = decimal.Zero
		row.TotalCharges = decimal.Zero
		row.ProfitLoss = decimal.Zero
		row.ROI = decimal.Zero
		row.ClosingBalance = row.OpeningBalance
		row.UpdatedAt = updatedAt
		n++
	}
	return n, nil
}

func (m *MockBankLedgerRepository) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, row := range m.rows {
		if row.LedgerDate.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (m *MockBankLedgerRepository) CountClosedForDate(ctx context.Context, date time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, row := range m.rows {
		if row.LedgerDate.Equal(date) && row.Status == domain.StatusClosed {
			n++
		}
	}
	return n, nil
}

// MockTransactionLogRepository is an in-memory mock of TransactionLogRepository.
type MockTransactionLogRepository struct {
	mu      sync.RWMutex
	Entries []*domain.TransactionLogEntry

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error
	ExistsByReferenceFunc func(ctx context.Context, referenceType domain.ReferenceType, referenceID string) (bool, error)
}

func NewMockTransactionLogRepository() *MockTransactionLogRepository {
	return &MockTransactionLogRepository{}
}

func (m *MockTransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockTransactionLogRepository) List(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.TransactionLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TransactionLogEntry
	for _, entry := range m.Entries {
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		if filter.ReferenceType != "" && entry.ReferenceType != filter.ReferenceType {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *MockTransactionLogRepository) ExistsByReference(ctx context.Context, referenceType domain.ReferenceType, referenceID string) (bool, error) {
	if m.ExistsByReferenceFunc != nil {
		return m.ExistsByReferenceFunc(ctx, referenceType, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entry := range m.Entries {
		if entry.ReferenceType == referenceType && entry.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

// MockPlayerRepository is an in-memory mock of PlayerRepository.
type MockPlayerRepository struct {
	mu           sync.RWMutex
	players      map[string]*domain.Player
	Transactions []*domain.PlayerTransaction

	GetByIDFunc           func(ctx context.Context, id string) (*domain.Player, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	CreateTransactionFunc func(ctx context.Context, tx usecase.Transaction, ptx *domain.PlayerTransaction) error
}

func NewMockPlayerRepository() *MockPlayerRepository {
	return &MockPlayerRepository{players: make(map[string]*domain.Player)}
}

func (m *MockPlayerRepository) Seed(player *domain.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[player.ID] = player
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if player, ok := m.players[id]; ok {
		return player, nil
	}
	return nil, domain.ErrPlayerNotFound
}

func (m *MockPlayerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Player, error) {
	return m.GetByID(ctx, id)
}

func (m *MockPlayerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[id]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	player.Balance = balance
	player.UpdatedAt = updatedAt
	return nil
}

func (m *MockPlayerRepository) CreateTransaction(ctx context.Context, tx usecase.Transaction, ptx *domain.PlayerTransaction) error {
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, tx, ptx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions = append(m.Transactions, ptx)
	return nil
}

// MockEntityRepository is a mock of EntityRepository.
type MockEntityRepository struct {
	Panels       map[string]*domain.Panel
	BankAccounts map[string]*domain.BankAccount
	ActivePanels int64
	ActiveBanks  int64
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		Panels:       make(map[string]*domain.Panel),
		BankAccounts: make(map[string]*domain.BankAccount),
	}
}

func (m *MockEntityRepository) GetPanel(ctx context.Context, id string) (*domain.Panel, error) {
	if panel, ok := m.Panels[id]; ok {
		return panel, nil
	}
	return nil, domain.ErrPanelNotFound
}

func (m *MockEntityRepository) GetBankAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	if account, ok := m.BankAccounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrBankAccountNotFound
}

func (m *MockEntityRepository) CountActivePanels(ctx context.Context) (int64, error) {
	return m.ActivePanels, nil
}

func (m *MockEntityRepository) CountActiveBankAccounts(ctx context.Context) (int64, error) {
	return m.ActiveBanks, nil
}

// MockAuditRepository is an in-memory mock of AuditRepository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	Entries []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, entry := range m.Entries {
		if filter.Operation != "" && entry.Operation != filter.Operation {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Last returns the most recent audit entry, nil if none.
func (m *MockAuditRepository) Last() *domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Entries) == 0 {
		return nil
	}
	return m.Entries[len(m.Entries)-1]
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock TransactionManager recording every
// transaction it hands out.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator issues sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// MockNotifier records published events.
type MockNotifier struct {
	mu     sync.Mutex
	Events []domain.LedgerEvent
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Publish(event domain.LedgerEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// MockRetrier runs the operation once, or a caller-provided policy.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
	Calls     int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	m.Calls++
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockInstrumentation counts metric signals.
type MockInstrumentation struct {
	mu        sync.Mutex
	Processed map[string]int
	Failed    map[string]int
	Warnings  map[string]int
	Resets    int
	AuditErrs int
}

func NewMockInstrumentation() *MockInstrumentation {
	return &MockInstrumentation{
		Processed: make(map[string]int),
		Failed:    make(map[string]int),
		Warnings:  make(map[string]int),
	}
}

func (m *MockInstrumentation) TransactionProcessed(referenceType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed[referenceType]++
}

func (m *MockInstrumentation) TransactionFailed(referenceType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed[referenceType]++
}

func (m *MockInstrumentation) ConsistencyWarning(entityType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Warnings[entityType]++
}

func (m *MockInstrumentation) ResetCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
}

func (m *MockInstrumentation) AuditWriteFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuditErrs++
}

// MockCache is an in-memory cache that ignores TTLs.
type MockCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, fmt.Errorf("cache miss for %s", key)
	}
	return value, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
