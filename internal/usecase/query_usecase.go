package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/domain"
)

// QueryUseCase serves read paths and the manual lock/unlock toggle.
type QueryUseCase struct {
	panelRepo PanelLedgerRepository
	bankRepo  BankLedgerRepository
	logRepo   TransactionLogRepository
	audit     *AuditUseCase
	notifier  Notifier
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(
	panelRepo PanelLedgerRepository,
	bankRepo BankLedgerRepository,
	logRepo TransactionLogRepository,
	audit *AuditUseCase,
	notifier Notifier,
	loc *time.Location,
	logger zerolog.Logger,
) *QueryUseCase {
	if loc == nil {
		loc = time.UTC
	}

	return &QueryUseCase{
		panelRepo: panelRepo,
		bankRepo:  bankRepo,
		logRepo:   logRepo,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// GetPanelLedger fetches one panel row. A zero date means today.
func (uc *QueryUseCase) GetPanelLedger(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
	return uc.panelRepo.Get(ctx, panelID, uc.resolveDate(date))
}

// GetBankLedger fetches one bank row. A zero date means today.
func (uc *QueryUseCase) GetBankLedger(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	return uc.bankRepo.Get(ctx, bankAccountID, uc.resolveDate(date))
}

// ListPanelLedgers pages through panel rows matching the filter.
func (uc *QueryUseCase) ListPanelLedgers(ctx context.Context, filter LedgerFilter) ([]*domain.PanelLedger, error) {
	filter.Limit, filter.Offset = clampPagination(filter.Limit, filter.Offset)

	return uc.panelRepo.List(ctx, filter)
}

// ListBankLedgers pages through bank rows matching the filter.
func (uc *QueryUseCase) ListBankLedgers(ctx context.Context, filter LedgerFilter) ([]*domain.BankLedger, error) {
	filter.Limit, filter.Offset = clampPagination(filter.Limit, filter.Offset)

	return uc.bankRepo.List(ctx, filter)
}

// GetTransactions pages through the transaction log.
func (uc *QueryUseCase) GetTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.TransactionLogEntry, error) {
	filter.Limit, filter.Offset = clampPagination(filter.Limit, filter.Offset)

	return uc.logRepo.List(ctx, filter)
}

// LockLedger flips a single row between OPEN and CLOSED for operator
// intervention. The flip is audited with the actor who requested it.
func (uc *QueryUseCase) LockLedger(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time, lock bool, actorID string) error {
	date = uc.resolveDate(date)
	now := uc.now().UTC()

	status := domain.StatusOpen
	operation := domain.AuditOpUnlock
	eventType := domain.EventTypeLedgerUnlocked

	if lock {
		status = domain.StatusClosed
		operation = domain.AuditOpLock
		eventType = domain.EventTypeLedgerLocked
	}

	var err error

	switch entityType {
	case domain.EntityPanel:
		err = uc.panelRepo.SetStatus(ctx, entityID, date, status, now)
	case domain.EntityBank:
		err = uc.bankRepo.SetStatus(ctx, entityID, date, status, now)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, entityType)
	}

	data := domain.JSON{"ledger_date": date.Format(dateLayout), "status": string(status)}
	if err != nil {
		data["error"] = err.Error()
		uc.audit.Log(ctx, operation, entityType, entityID, data, domain.AuditResultFailure, actorID)

		return err
	}

	uc.audit.Log(ctx, operation, entityType, entityID, data, domain.AuditResultSuccess, actorID)

	if uc.notifier != nil {
		uc.notifier.Publish(domain.LedgerEvent{
			Type:       eventType,
			EntityType: string(entityType),
			EntityID:   entityID,
			LedgerDate: date.Format(dateLayout),
			OccurredAt: now,
		})
	}

	return nil
}

func (uc *QueryUseCase) resolveDate(date time.Time) time.Time {
	if date.IsZero() {
		return domain.NormalizeDate(uc.now(), uc.loc)
	}

	return domain.NormalizeDate(date, uc.loc)
}
