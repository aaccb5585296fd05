package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/domain"
)

// ResetUseCase rolls the daily ledger over at local midnight: close
// yesterday's rows, create today's, carry closing balances forward as
// openings and zero the daily counters. The whole rollover is one
// database transaction and every step is idempotent, so a crashed or
// repeated run converges on the same end state.
type ResetUseCase struct {
	txManager  TransactionManager
	panelRepo  PanelLedgerRepository
	bankRepo   BankLedgerRepository
	entityRepo EntityRepository
	audit      *AuditUseCase
	notifier   Notifier
	instr      Instrumentation
	logger     zerolog.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewResetUseCase creates a new ResetUseCase.
func NewResetUseCase(
	txManager TransactionManager,
	panelRepo PanelLedgerRepository,
	bankRepo BankLedgerRepository,
	entityRepo EntityRepository,
	audit *AuditUseCase,
	notifier Notifier,
	instr Instrumentation,
	loc *time.Location,
	logger zerolog.Logger,
) *ResetUseCase {
	if loc == nil {
		loc = time.UTC
	}

	if instr == nil {
		instr = NopInstrumentation{}
	}

	return &ResetUseCase{
		txManager:  txManager,
		panelRepo:  panelRepo,
		bankRepo:   bankRepo,
		entityRepo: entityRepo,
		audit:      audit,
		notifier:   notifier,
		instr:      instr,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

// ResetSummary reports what one rollover run did.
type ResetSummary struct {
	FromDate      time.Time
	ToDate        time.Time
	PanelsClosed  int64
	PanelsCreated int64
	BanksClosed   int64
	BanksCreated  int64
	StartedAt     time.Time
	Duration      time.Duration
}

// PerformDailyReset closes every open row for the previous day and
// opens today's rows with carried-forward openings and zeroed counters.
// Safe to re-run: already-closed rows and already-created rows are
// skipped by the underlying statements.
func (uc *ResetUseCase) PerformDailyReset(ctx context.Context, actorID string) (*ResetSummary, error) {
	now := uc.now()
	today := domain.NormalizeDate(now, uc.loc)
	yesterday := today.AddDate(0, 0, -1)

	summary, err := uc.rollover(ctx, yesterday, today)
	if err != nil {
		uc.audit.Log(ctx, domain.AuditOpDailyReset, "", "",
			domain.JSON{"from": yesterday.Format(dateLayout), "to": today.Format(dateLayout), "error": err.Error()},
			domain.AuditResultError, actorID)

		return nil, err
	}

	uc.instr.ResetCompleted()
	uc.audit.Log(ctx, domain.AuditOpDailyReset, "", "",
		domain.JSON{
			"from":           yesterday.Format(dateLayout),
			"to":             today.Format(dateLayout),
			"panels_closed":  summary.PanelsClosed,
			"panels_created": summary.PanelsCreated,
			"banks_closed":   summary.BanksClosed,
			"banks_created":  summary.BanksCreated,
			"duration_ms":    summary.Duration.Milliseconds(),
		},
		domain.AuditResultSuccess, actorID)

	uc.publishResetCompleted(today)

	uc.logger.Info().
		Str("from", yesterday.Format(dateLayout)).
		Str("to", today.Format(dateLayout)).
		Int64("panels_closed", summary.PanelsClosed).
		Int64("banks_closed", summary.BanksClosed).
		Dur("duration", summary.Duration).
		Msg("daily reset completed")

	return summary, nil
}

// ManualReset re-runs the rollover into targetDate from the day before
// it. Refused once any row for targetDate is already closed, since that
// means a later rollover has moved past it.
func (uc *ResetUseCase) ManualReset(ctx context.Context, targetDate time.Time, actorID string) (*ResetSummary, error) {
	targetDate = domain.NormalizeDate(targetDate, uc.loc)

	closedPanels, err := uc.panelRepo.CountClosedForDate(ctx, targetDate)
	if err != nil {
		return nil, err
	}

	closedBanks, err := uc.bankRepo.CountClosedForDate(ctx, targetDate)
	if err != nil {
		return nil, err
	}

	if closedPanels > 0 || closedBanks > 0 {
		err := fmt.Errorf("%w: %s already has closed rows", domain.ErrLedgerAlreadyClosed, targetDate.Format(dateLayout))
		uc.audit.Log(ctx, domain.AuditOpManualReset, "", "",
			domain.JSON{"target": targetDate.Format(dateLayout), "error": err.Error()},
			domain.AuditResultFailure, actorID)

		return nil, err
	}

	summary, err := uc.rollover(ctx, targetDate.AddDate(0, 0, -1), targetDate)
	if err != nil {
		uc.audit.Log(ctx, domain.AuditOpManualReset, "", "",
			domain.JSON{"target": targetDate.Format(dateLayout), "error": err.Error()},
			domain.AuditResultError, actorID)

		return nil, err
	}

	uc.audit.Log(ctx, domain.AuditOpManualReset, "", "",
		domain.JSON{
			"target":         targetDate.Format(dateLayout),
			"panels_closed":  summary.PanelsClosed,
			"panels_created": summary.PanelsCreated,
			"banks_closed":   summary.BanksClosed,
			"banks_created":  summary.BanksCreated,
		},
		domain.AuditResultSuccess, actorID)

	uc.publishResetCompleted(targetDate)

	return summary, nil
}

func (uc *ResetUseCase) rollover(ctx context.Context, fromDate, toDate time.Time) (*ResetSummary, error) {
	startedAt := uc.now().UTC()
	summary := &ResetSummary{FromDate: fromDate, ToDate: toDate, StartedAt: startedAt}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if summary.PanelsClosed, err = uc.panelRepo.CloseAllForDate(ctx, tx, fromDate, startedAt); err != nil {
		return nil, fmt.Errorf("close panel rows for %s: %w", fromDate.Format(dateLayout), err)
	}

	if summary.BanksClosed, err = uc.bankRepo.CloseAllForDate(ctx, tx, fromDate, startedAt); err != nil {
		return nil, fmt.Errorf("close bank rows for %s: %w", fromDate.Format(dateLayout), err)
	}

	if summary.PanelsCreated, err = uc.panelRepo.CreateForDate(ctx, tx, toDate, startedAt); err != nil {
		return nil, fmt.Errorf("create panel rows for %s: %w", toDate.Format(dateLayout), err)
	}

	if summary.BanksCreated, err = uc.bankRepo.CreateForDate(ctx, tx, toDate, startedAt); err != nil {
		return nil, fmt.Errorf("create bank rows for %s: %w", toDate.Format(dateLayout), err)
	}

	if _, err = uc.panelRepo.CarryForward(ctx, tx, fromDate, toDate, startedAt); err != nil {
		return nil, fmt.Errorf("carry panel balances into %s: %w", toDate.Format(dateLayout), err)
	}

	if _, err = uc.bankRepo.CarryForward(ctx, tx, fromDate, toDate, startedAt); err != nil {
		return nil, fmt.Errorf("carry bank balances into %s: %w", toDate.Format(dateLayout), err)
	}

	if _, err = uc.panelRepo.ResetCounters(ctx, tx, toDate, startedAt); err != nil {
		return nil, fmt.Errorf("reset panel counters for %s: %w", toDate.Format(dateLayout), err)
	}

	if _, err = uc.bankRepo.ResetCounters(ctx, tx, toDate, startedAt); err != nil {
		return nil, fmt.Errorf("reset bank counters for %s: %w", toDate.Format(dateLayout), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	summary.Duration = uc.now().UTC().Sub(startedAt)

	return summary, nil
}

// ResetStatus reports whether the rollover into a date has fully happened.
type ResetStatus struct {
	Date         time.Time
	Complete     bool
	ActivePanels int64
	PanelRows    int64
	ActiveBanks  int64
	BankRows     int64
	PrevOpenRows int64
	PreviousDate time.Time
}

// IsResetComplete checks that every active entity has a row for the
// date and nothing from the previous day is still open. Used by the
// ticker to decide whether a missed rollover needs to run.
func (uc *ResetUseCase) IsResetComplete(ctx context.Context, date time.Time) (*ResetStatus, error) {
	date = domain.NormalizeDate(date, uc.loc)
	prev := date.AddDate(0, 0, -1)
	status := &ResetStatus{Date: date, PreviousDate: prev}

	var err error

	if status.ActivePanels, err = uc.entityRepo.CountActivePanels(ctx); err != nil {
		return nil, err
	}

	if status.PanelRows, err = uc.panelRepo.CountForDate(ctx, date); err != nil {
		return nil, err
	}

	if status.ActiveBanks, err = uc.entityRepo.CountActiveBankAccounts(ctx); err != nil {
		return nil, err
	}

	if status.BankRows, err = uc.bankRepo.CountForDate(ctx, date); err != nil {
		return nil, err
	}

	prevPanelRows, err := uc.panelRepo.CountForDate(ctx, prev)
	if err != nil {
		return nil, err
	}

	prevPanelClosed, err := uc.panelRepo.CountClosedForDate(ctx, prev)
	if err != nil {
		return nil, err
	}

	prevBankRows, err := uc.bankRepo.CountForDate(ctx, prev)
	if err != nil {
		return nil, err
	}

	prevBankClosed, err := uc.bankRepo.CountClosedForDate(ctx, prev)
	if err != nil {
		return nil, err
	}

	status.PrevOpenRows = (prevPanelRows - prevPanelClosed) + (prevBankRows - prevBankClosed)
	status.Complete = status.PanelRows >= status.ActivePanels &&
		status.BankRows >= status.ActiveBanks &&
		status.PrevOpenRows == 0

	return status, nil
}

func (uc *ResetUseCase) publishResetCompleted(date time.Time) {
	if uc.notifier == nil {
		return
	}

	uc.notifier.Publish(domain.LedgerEvent{
		Type:       domain.EventTypeResetCompleted,
		LedgerDate: date.Format(dateLayout),
		OccurredAt: uc.now().UTC(),
	})
}
