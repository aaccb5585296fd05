package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// CalculationUseCase derives profit/loss, ROI and utilization from a
// ledger row's raw counters. It detects closing-balance discrepancies
// but never corrects them.
type CalculationUseCase struct {
	txManager TransactionManager
	panelRepo PanelLedgerRepository
	bankRepo  BankLedgerRepository
	instr     Instrumentation
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCalculationUseCase creates a new CalculationUseCase.
func NewCalculationUseCase(
	txManager TransactionManager,
	panelRepo PanelLedgerRepository,
	bankRepo BankLedgerRepository,
	instr Instrumentation,
	logger zerolog.Logger,
) *CalculationUseCase {
	if instr == nil {
		instr = NopInstrumentation{}
	}

	return &CalculationUseCase{
		txManager: txManager,
		panelRepo: panelRepo,
		bankRepo:  bankRepo,
		instr:     instr,
		logger:    logger,
		now:       time.Now,
	}
}

// ComputePanelMetrics recalculates the derived fields on a panel row in
// place. A stored closing balance diverging from the counters by more
// than the epsilon is logged as a warning, not corrected.
func (uc *CalculationUseCase) ComputePanelMetrics(l *domain.PanelLedger) {
	l.ProfitLoss = l.TotalDeposits.Sub(l.TotalWithdrawals).Round(2)

	denom := l.OpeningBalance.Add(l.PointsBalance)
	if denom.IsZero() {
		l.Utilization = decimal.Zero
	} else {
		l.Utilization = l.PointsBalance.Div(denom).Mul(hundred).Round(2)
	}

	if l.OpeningBalance.IsZero() {
		l.ROI = decimal.Zero
	} else {
		l.ROI = l.PointsBalance.Sub(l.OpeningBalance).Div(l.OpeningBalance).Mul(hundred).Round(2)
	}

	if !l.IsBalanced() {
		uc.instr.ConsistencyWarning(string(domain.EntityPanel))
		uc.logger.Warn().
			Str("panel_id", l.PanelID).
			Str("ledger_date", l.LedgerDate.Format("2006-01-02")).
			Str("expected", l.ExpectedClosing().String()).
			Str("stored", l.ClosingBalance.String()).
			Msg("panel closing balance diverges from counters")
	}
}

// ComputeBankMetrics recalculates the derived fields on a bank row in place.
func (uc *CalculationUseCase) ComputeBankMetrics(l *domain.BankLedger) {
	l.ProfitLoss = l.TotalDeposits.Sub(l.TotalWithdrawals).Round(2)

	net := l.NetBalance()
	if l.OpeningBalance.IsZero() {
		l.ROI = decimal.Zero
	} else {
		l.ROI = net.Sub(l.OpeningBalance).Div(l.OpeningBalance).Mul(hundred).Round(2)
	}

	if !l.IsBalanced() {
		uc.instr.ConsistencyWarning(string(domain.EntityBank))
		uc.logger.Warn().
			Str("bank_account_id", l.BankAccountID).
			Str("ledger_date", l.LedgerDate.Format("2006-01-02")).
			Str("expected", l.ExpectedClosing().String()).
			Str("stored", l.ClosingBalance.String()).
			Msg("bank closing balance diverges from counters")
	}
}

// RecalculatePanel reloads one panel row under lock, recomputes its
// metrics and persists them.
func (uc *CalculationUseCase) RecalculatePanel(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row, err := uc.panelRepo.GetForUpdate(ctx, tx, panelID, date)
	if err != nil {
		return nil, err
	}

	uc.ComputePanelMetrics(row)
	row.UpdatedAt = uc.now().UTC()

	if err := uc.panelRepo.Update(ctx, tx, row); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return row, nil
}

// RecalculateBank reloads one bank row under lock, recomputes its
// metrics and persists them.
func (uc *CalculationUseCase) RecalculateBank(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row, err := uc.bankRepo.GetForUpdate(ctx, tx, bankAccountID, date)
	if err != nil {
		return nil, err
	}

	uc.ComputeBankMetrics(row)
	row.UpdatedAt = uc.now().UTC()

	if err := uc.bankRepo.Update(ctx, tx, row); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return row, nil
}

// RecalculationSummary reports a bulk metrics run.
type RecalculationSummary struct {
	Date         time.Time
	PanelsTotal  int
	BanksTotal   int
	PanelsFailed int
	BanksFailed  int
}

// RecalculateAll recomputes metrics for every open row on a date.
// Per-row failures are logged and counted, never propagated, so one bad
// row cannot block the batch.
func (uc *CalculationUseCase) RecalculateAll(ctx context.Context, date time.Time) (*RecalculationSummary, error) {
	summary := &RecalculationSummary{Date: date}

	panels, err := uc.panelRepo.ListByDate(ctx, date, domain.StatusOpen)
	if err != nil {
		return nil, err
	}

	summary.PanelsTotal = len(panels)
	for _, row := range panels {
		if _, err := uc.RecalculatePanel(ctx, row.PanelID, date); err != nil {
			summary.PanelsFailed++
			uc.logger.Error().
				Err(err).
				Str("panel_id", row.PanelID).
				Str("ledger_date", date.Format("2006-01-02")).
				Msg("panel metrics recalculation failed")
		}
	}

	banks, err := uc.bankRepo.ListByDate(ctx, date, domain.StatusOpen)
	if err != nil {
		return nil, err
	}

	summary.BanksTotal = len(banks)
	for _, row := range banks {
		if _, err := uc.RecalculateBank(ctx, row.BankAccountID, date); err != nil {
			summary.BanksFailed++
			uc.logger.Error().
				Err(err).
				Str("bank_account_id", row.BankAccountID).
				Str("ledger_date", date.Format("2006-01-02")).
				Msg("bank metrics recalculation failed")
		}
	}

	return summary, nil
}
