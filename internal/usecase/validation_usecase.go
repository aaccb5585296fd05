package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
)

// ValidationUseCase gates ledger mutations and verifies stored balances
// against the counter formulas. It never mutates state.
type ValidationUseCase struct {
	panelRepo PanelLedgerRepository
	bankRepo  BankLedgerRepository
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewValidationUseCase creates a new ValidationUseCase.
func NewValidationUseCase(
	panelRepo PanelLedgerRepository,
	bankRepo BankLedgerRepository,
	loc *time.Location,
	logger zerolog.Logger,
) *ValidationUseCase {
	if loc == nil {
		loc = time.UTC
	}

	return &ValidationUseCase{
		panelRepo: panelRepo,
		bankRepo:  bankRepo,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

func (uc *ValidationUseCase) today() time.Time {
	return domain.NormalizeDate(uc.now(), uc.loc)
}

// ModifyCheck is the outcome of a CanModify gate.
type ModifyCheck struct {
	Allowed bool
	Reason  string
}

// ledgerRowState is the subset of row state shared by both ledger tables.
type ledgerRowState struct {
	status  domain.LedgerStatus
	balance decimal.Decimal // panel: points balance, bank: closing balance
	found   bool
}

func (uc *ValidationUseCase) rowState(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (ledgerRowState, error) {
	switch entityType {
	case domain.EntityPanel:
		row, err := uc.panelRepo.Get(ctx, entityID, date)
		if errors.Is(err, domain.ErrLedgerNotFound) {
			return ledgerRowState{}, nil
		}
		if err != nil {
			return ledgerRowState{}, err
		}

		return ledgerRowState{status: row.Status, balance: row.PointsBalance, found: true}, nil
	case domain.EntityBank:
		row, err := uc.bankRepo.Get(ctx, entityID, date)
		if errors.Is(err, domain.ErrLedgerNotFound) {
			return ledgerRowState{}, nil
		}
		if err != nil {
			return ledgerRowState{}, err
		}

		return ledgerRowState{status: row.Status, balance: row.ClosingBalance, found: true}, nil
	default:
		return ledgerRowState{}, fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, entityType)
	}
}

// CanModify decides whether a ledger row may be mutated today: the row
// must exist, be OPEN and not belong to a past date. Used as a
// precondition by the transaction path and exposed standalone for UI
// gating.
func (uc *ValidationUseCase) CanModify(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (ModifyCheck, error) {
	date = domain.NormalizeDate(date, uc.loc)

	state, err := uc.rowState(ctx, entityType, entityID, date)
	if err != nil {
		return ModifyCheck{}, err
	}

	dateStr := date.Format("2006-01-02")

	if !state.found {
		return ModifyCheck{Reason: fmt.Sprintf("no %s ledger row exists for %s on %s", entityType, entityID, dateStr)}, nil
	}

	if state.status == domain.StatusClosed {
		return ModifyCheck{Reason: fmt.Sprintf("Ledger for %s is closed and cannot be modified", dateStr)}, nil
	}

	if date.Before(uc.today()) {
		return ModifyCheck{Reason: fmt.Sprintf("Ledger for %s is in the past and cannot be modified", dateStr)}, nil
	}

	return ModifyCheck{Allowed: true}, nil
}

// TransactionCheck is the outcome of a ValidateTransaction call.
type TransactionCheck struct {
	Valid  bool
	Errors []string
}

// ValidateTransaction combines the CanModify gate with amount and
// balance checks for a proposed transaction.
func (uc *ValidationUseCase) ValidateTransaction(
	ctx context.Context,
	entityType domain.EntityType,
	entityID string,
	date time.Time,
	amount decimal.Decimal,
	direction domain.Direction,
) (TransactionCheck, error) {
	date = domain.NormalizeDate(date, uc.loc)

	var errs []string

	check, err := uc.CanModify(ctx, entityType, entityID, date)
	if err != nil {
		return TransactionCheck{}, err
	}

	if !check.Allowed {
		errs = append(errs, check.Reason)
	}

	if err := domain.ValidateAmount(amount); err != nil {
		errs = append(errs, err.Error())
	}

	if err := domain.ValidateLedgerDate(date, uc.today()); err != nil {
		errs = append(errs, err.Error())
	}

	if direction == domain.DirectionDebit && check.Allowed {
		state, err := uc.rowState(ctx, entityType, entityID, date)
		if err != nil {
			return TransactionCheck{}, err
		}

		if amount.GreaterThan(state.balance) {
			errs = append(errs, fmt.Sprintf("debit of %s exceeds current balance %s", amount, state.balance))
		}
	}

	return TransactionCheck{Valid: len(errs) == 0, Errors: errs}, nil
}

// BalanceCheck is the outcome of a stored-vs-recomputed balance comparison.
type BalanceCheck struct {
	Valid    bool
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

// ValidateBalanceCalculation recomputes the closing balance from the
// day's counters and compares it to the stored value within the epsilon.
func (uc *ValidationUseCase) ValidateBalanceCalculation(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (BalanceCheck, error) {
	date = domain.NormalizeDate(date, uc.loc)

	switch entityType {
	case domain.EntityPanel:
		row, err := uc.panelRepo.Get(ctx, entityID, date)
		if err != nil {
			return BalanceCheck{}, err
		}

		return BalanceCheck{Valid: row.IsBalanced(), Expected: row.ExpectedClosing(), Actual: row.ClosingBalance}, nil
	case domain.EntityBank:
		row, err := uc.bankRepo.Get(ctx, entityID, date)
		if err != nil {
			return BalanceCheck{}, err
		}

		return BalanceCheck{Valid: row.IsBalanced(), Expected: row.ExpectedClosing(), Actual: row.ClosingBalance}, nil
	default:
		return BalanceCheck{}, fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, entityType)
	}
}

// LedgerDiscrepancy identifies one row whose stored closing balance does
// not match its counters.
type LedgerDiscrepancy struct {
	EntityType domain.EntityType
	EntityID   string
	LedgerDate time.Time
	Expected   decimal.Decimal
	Actual     decimal.Decimal
}

// Message renders the discrepancy for operator display.
func (d LedgerDiscrepancy) Message() string {
	return fmt.Sprintf("%s %s on %s: stored closing balance %s, expected %s",
		d.EntityType, d.EntityID, d.LedgerDate.Format("2006-01-02"), d.Actual, d.Expected)
}

// ValidationReport is the result of a full-ledger integrity sweep.
type ValidationReport struct {
	Date    time.Time
	Checked int
	Valid   bool
	Errors  []LedgerDiscrepancy
}

// ValidateAllLedgers runs the balance check over every row for a date.
// It reports discrepancies and never auto-corrects; intended for the
// nightly integrity sweep.
func (uc *ValidationUseCase) ValidateAllLedgers(ctx context.Context, date time.Time) (*ValidationReport, error) {
	date = domain.NormalizeDate(date, uc.loc)
	report := &ValidationReport{Date: date, Valid: true}

	panels, err := uc.panelRepo.ListByDate(ctx, date, "")
	if err != nil {
		return nil, err
	}

	for _, row := range panels {
		report.Checked++
		if !row.IsBalanced() {
			report.Errors = append(report.Errors, LedgerDiscrepancy{
				EntityType: domain.EntityPanel,
				EntityID:   row.PanelID,
				LedgerDate: row.LedgerDate,
				Expected:   row.ExpectedClosing(),
				Actual:     row.ClosingBalance,
			})
		}
	}

	banks, err := uc.bankRepo.ListByDate(ctx, date, "")
	if err != nil {
		return nil, err
	}

	for _, row := range banks {
		report.Checked++
		if !row.IsBalanced() {
			report.Errors = append(report.Errors, LedgerDiscrepancy{
				EntityType: domain.EntityBank,
				EntityID:   row.BankAccountID,
				LedgerDate: row.LedgerDate,
				Expected:   row.ExpectedClosing(),
				Actual:     row.ClosingBalance,
			})
		}
	}

	if len(report.Errors) > 0 {
		report.Valid = false

		for _, discrepancy := range report.Errors {
			uc.logger.Warn().Str("discrepancy", discrepancy.Message()).Msg("ledger validation failed")
		}
	}

	return report, nil
}
