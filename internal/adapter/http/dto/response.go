package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

// PanelLedgerResponse represents a panel daily ledger row in API responses.
type PanelLedgerResponse struct {
	ID               string          `json:"id"`
	PanelID          string          `json:"panel_id"`
	LedgerDate       string          `json:"ledger_date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
	PointsBalance    decimal.Decimal `json:"points_balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	BonusPoints      decimal.Decimal `json:"bonus_points"`
	TopUp            decimal.Decimal `json:"top_up"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	ROI              decimal.Decimal `json:"roi"`
	Utilization      decimal.Decimal `json:"utilization"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PanelLedgerFromDomain converts a domain panel ledger row to a response.
func PanelLedgerFromDomain(l *domain.PanelLedger) *PanelLedgerResponse {
	return &PanelLedgerResponse{
		ID:               l.ID,
		PanelID:          l.PanelID,
		LedgerDate:       l.LedgerDate.Format(dateLayout),
		OpeningBalance:   l.OpeningBalance,
		ClosingBalance:   l.ClosingBalance,
		PointsBalance:    l.PointsBalance,
		TotalDeposits:    l.TotalDeposits,
		TotalWithdrawals: l.TotalWithdrawals,
		BonusPoints:      l.BonusPoints,
		TopUp:            l.TopUp,
		ProfitLoss:       l.ProfitLoss,
		ROI:              l.ROI,
		Utilization:      l.Utilization,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// PanelLedgersFromDomain converts domain panel ledger rows to responses.
func PanelLedgersFromDomain(rows []*domain.PanelLedger) []*PanelLedgerResponse {
	result := make([]*PanelLedgerResponse, len(rows))
	for i, l := range rows {
		result[i] = PanelLedgerFromDomain(l)
	}
	return result
}

// BankLedgerResponse represents a bank daily ledger row in API responses.
type BankLedgerResponse struct {
	ID               string          `json:"id"`
	BankAccountID    string          `json:"bank_account_id"`
	LedgerDate       string          `json:"ledger_date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	ClosingBalance   decimal.Decimal `json:"closing_balance"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalCharges     decimal.Decimal `json:"total_charges"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	ROI              decimal.Decimal `json:"roi"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BankLedgerFromDomain converts a domain bank ledger row to a response.
func BankLedgerFromDomain(l *domain.BankLedger) *BankLedgerResponse {
	return &BankLedgerResponse{
		ID:               l.ID,
		BankAccountID:    l.BankAccountID,
		LedgerDate:       l.LedgerDate.Format(dateLayout),
		OpeningBalance:   l.OpeningBalance,
		ClosingBalance:   l.ClosingBalance,
		NetBalance:       l.NetBalance(),
		TotalDeposits:    l.TotalDeposits,
		TotalWithdrawals: l.TotalWithdrawals,
		TotalCharges:     l.TotalCharges,
		ProfitLoss:       l.ProfitLoss,
		ROI:              l.ROI,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// BankLedgersFromDomain converts domain bank ledger rows to responses.
func BankLedgersFromDomain(rows []*domain.BankLedger) []*BankLedgerResponse {
	result := make([]*BankLedgerResponse, len(rows))
	for i, l := range rows {
		result[i] = BankLedgerFromDomain(l)
	}
	return result
}

// TransactionEntryResponse represents a transaction log entry in API responses.
type TransactionEntryResponse struct {
	ID                string          `json:"id"`
	TransactionDate   time.Time       `json:"transaction_date"`
	LedgerDate        string          `json:"ledger_date"`
	EntityType        string          `json:"entity_type"`
	EntityID          string          `json:"entity_id"`
	Direction         string          `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	ReferenceType     string          `json:"reference_type"`
	ReferenceID       string          `json:"reference_id,omitempty"`
	RelatedEntityType string          `json:"related_entity_type,omitempty"`
	RelatedEntityID   string          `json:"related_entity_id,omitempty"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransactionEntryFromDomain converts a domain log entry to a response.
func TransactionEntryFromDomain(e *domain.TransactionLogEntry) *TransactionEntryResponse {
	return &TransactionEntryResponse{
		ID:                e.ID,
		TransactionDate:   e.TransactionDate,
		LedgerDate:        e.LedgerDate.Format(dateLayout),
		EntityType:        string(e.EntityType),
		EntityID:          e.EntityID,
		Direction:         string(e.Direction),
		Amount:            e.Amount,
		ReferenceType:     string(e.ReferenceType),
		ReferenceID:       e.ReferenceID,
		RelatedEntityType: string(e.RelatedEntityType),
		RelatedEntityID:   e.RelatedEntityID,
		Description:       e.Description,
		CreatedAt:         e.CreatedAt,
	}
}

// TransactionEntriesFromDomain converts domain log entries to responses.
func TransactionEntriesFromDomain(entries []*domain.TransactionLogEntry) []*TransactionEntryResponse {
	result := make([]*TransactionEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = TransactionEntryFromDomain(e)
	}
	return result
}

// TransactionResultResponse represents the outcome of a processed
// transaction.
type TransactionResultResponse struct {
	Panel     *PanelLedgerResponse        `json:"panel,omitempty"`
	Bank      *BankLedgerResponse         `json:"bank,omitempty"`
	Entries   []*TransactionEntryResponse `json:"entries"`
	WinAmount decimal.Decimal             `json:"win_amount"`
}

// TransactionResultFromUseCase converts a use case result to a response.
func TransactionResultFromUseCase(r *usecase.TransactionResult) *TransactionResultResponse {
	resp := &TransactionResultResponse{
		Entries:   TransactionEntriesFromDomain(r.Entries),
		WinAmount: r.WinAmount,
	}
	if r.Panel != nil {
		resp.Panel = PanelLedgerFromDomain(r.Panel)
	}
	if r.Bank != nil {
		resp.Bank = BankLedgerFromDomain(r.Bank)
	}
	return resp
}

// ResetSummaryResponse represents the outcome of a daily reset.
type ResetSummaryResponse struct {
	FromDate      string        `json:"from_date"`
	ToDate        string        `json:"to_date"`
	PanelsClosed  int64         `json:"panels_closed"`
	PanelsCreated int64         `json:"panels_created"`
	BanksClosed   int64         `json:"banks_closed"`
	BanksCreated  int64         `json:"banks_created"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration_ns"`
}

// ResetSummaryFromUseCase converts a use case reset summary to a response.
func ResetSummaryFromUseCase(s *usecase.ResetSummary) *ResetSummaryResponse {
	return &ResetSummaryResponse{
		FromDate:      s.FromDate.Format(dateLayout),
		ToDate:        s.ToDate.Format(dateLayout),
		PanelsClosed:  s.PanelsClosed,
		PanelsCreated: s.PanelsCreated,
		BanksClosed:   s.BanksClosed,
		BanksCreated:  s.BanksCreated,
		StartedAt:     s.StartedAt,
		Duration:      s.Duration,
	}
}

// ResetStatusResponse reports whether a date's rollover has completed.
type ResetStatusResponse struct {
	Date         string `json:"date"`
	Complete     bool   `json:"complete"`
	ActivePanels int64  `json:"active_panels"`
	PanelRows    int64  `json:"panel_rows"`
	ActiveBanks  int64  `json:"active_banks"`
	BankRows     int64  `json:"bank_rows"`
	PrevOpenRows int64  `json:"previous_open_rows"`
	PreviousDate string `json:"previous_date"`
}

// ResetStatusFromUseCase converts a use case reset status to a response.
func ResetStatusFromUseCase(s *usecase.ResetStatus) *ResetStatusResponse {
	return &ResetStatusResponse{
		Date:         s.Date.Format(dateLayout),
		Complete:     s.Complete,
		ActivePanels: s.ActivePanels,
		PanelRows:    s.PanelRows,
		ActiveBanks:  s.ActiveBanks,
		BankRows:     s.BankRows,
		PrevOpenRows: s.PrevOpenRows,
		PreviousDate: s.PreviousDate.Format(dateLayout),
	}
}

// ModifyCheckResponse reports whether a ledger row may be mutated.
type ModifyCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// BalanceCheckResponse reports a stored-vs-recomputed balance comparison.
type BalanceCheckResponse struct {
	Valid    bool            `json:"valid"`
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
}

// ValidationReportResponse is the result of a full-ledger integrity sweep.
type ValidationReportResponse struct {
	Date    string   `json:"date"`
	Checked int      `json:"checked"`
	Valid   bool     `json:"valid"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidationReportFromUseCase converts a use case report to a response.
func ValidationReportFromUseCase(r *usecase.ValidationReport) *ValidationReportResponse {
	resp := &ValidationReportResponse{
		Date:    r.Date.Format(dateLayout),
		Checked: r.Checked,
		Valid:   r.Valid,
	}
	for _, d := range r.Errors {
		resp.Errors = append(resp.Errors, d.Message())
	}
	return resp
}

// RecalculationSummaryResponse reports a batch metrics recalculation.
type RecalculationSummaryResponse struct {
	Date         string `json:"date"`
	PanelsTotal  int    `json:"panels_total"`
	BanksTotal   int    `json:"banks_total"`
	PanelsFailed int    `json:"panels_failed"`
	BanksFailed  int    `json:"banks_failed"`
}

// RecalculationSummaryFromUseCase converts a use case summary to a response.
func RecalculationSummaryFromUseCase(s *usecase.RecalculationSummary) *RecalculationSummaryResponse {
	return &RecalculationSummaryResponse{
		Date:         s.Date.Format(dateLayout),
		PanelsTotal:  s.PanelsTotal,
		BanksTotal:   s.BanksTotal,
		PanelsFailed: s.PanelsFailed,
		BanksFailed:  s.BanksFailed,
	}
}

// AuditLogResponse represents an audit log record in API responses.
type AuditLogResponse struct {
	ID         string      `json:"id"`
	Operation  string      `json:"operation"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Data       domain.JSON `json:"data,omitempty"`
	Result     string      `json:"result"`
	ActorID    string      `json:"actor_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AuditLogFromDomain converts a domain audit record to a response.
func AuditLogFromDomain(a *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:         a.ID,
		Operation:  a.Operation,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Data:       a.Data,
		Result:     a.Result,
		ActorID:    a.ActorID,
		CreatedAt:  a.CreatedAt,
	}
}

// AuditLogsFromDomain converts domain audit records to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, a := range logs {
		result[i] = AuditLogFromDomain(a)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
