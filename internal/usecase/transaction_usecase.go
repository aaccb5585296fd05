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

const dateLayout = "2006-01-02"

// ApplyMode selects how a transaction touches live state. Live
// application updates the player's tracked balance and runs win
// inference; historical application targets a still-open backdated
// ledger row and leaves live balances alone.
type ApplyMode string

const (
	ApplyLive       ApplyMode = "live"
	ApplyHistorical ApplyMode = "historical"
)

// DeriveMode picks the apply mode from the ledger date: anything before
// today is a historical application.
func DeriveMode(date, today time.Time) ApplyMode {
	if date.Before(today) {
		return ApplyHistorical
	}

	return ApplyLive
}

// TransactionUseCase applies the four financial event types. Each event
// runs in one atomic unit of work: row locks, transaction-log inserts,
// ledger updates and metric recalculation either all commit or all roll
// back. The failure audit is written outside the rolled-back unit.
type TransactionUseCase struct {
	txManager  TransactionManager
	panelRepo  PanelLedgerRepository
	bankRepo   BankLedgerRepository
	logRepo    TransactionLogRepository
	playerRepo PlayerRepository
	calc       *CalculationUseCase
	audit      *AuditUseCase
	idGen      IDGenerator
	retrier    Retrier
	notifier   Notifier
	instr      Instrumentation
	logger     zerolog.Logger
	loc        *time.Location
	now        func() time.Time
}

// TransactionUseCaseConfig bundles the dependencies of TransactionUseCase.
type TransactionUseCaseConfig struct {
	TxManager  TransactionManager
	PanelRepo  PanelLedgerRepository
	BankRepo   BankLedgerRepository
	LogRepo    TransactionLogRepository
	PlayerRepo PlayerRepository
	Calc       *CalculationUseCase
	Audit      *AuditUseCase
	IDGen      IDGenerator
	Retrier    Retrier
	Notifier   Notifier
	Instr      Instrumentation
	Logger     zerolog.Logger
	Location   *time.Location
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(cfg TransactionUseCaseConfig) *TransactionUseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.Instr == nil {
		cfg.Instr = NopInstrumentation{}
	}

	return &TransactionUseCase{
		txManager:  cfg.TxManager,
		panelRepo:  cfg.PanelRepo,
		bankRepo:   cfg.BankRepo,
		logRepo:    cfg.LogRepo,
		playerRepo: cfg.PlayerRepo,
		calc:       cfg.Calc,
		audit:      cfg.Audit,
		idGen:      cfg.IDGen,
		retrier:    cfg.Retrier,
		notifier:   cfg.Notifier,
		instr:      cfg.Instr,
		logger:     cfg.Logger,
		loc:        cfg.Location,
		now:        time.Now,
	}
}

// DepositInput is a player deposit settled between a panel and a bank account.
type DepositInput struct {
	PanelID       string
	BankAccountID string
	PlayerID      string
	Amount        decimal.Decimal
	BonusPoints   decimal.Decimal
	ReferenceID   string
	Date          time.Time
	Mode          ApplyMode
	ActorID       string
	Description   string
}

// WithdrawalInput is a player cash-out settled between a panel and a bank account.
type WithdrawalInput struct {
	PanelID       string
	BankAccountID string
	PlayerID      string
	Amount        decimal.Decimal
	Charge        decimal.Decimal
	ReferenceID   string
	Date          time.Time
	Mode          ApplyMode
	ActorID       string
	Description   string
}

// TopUpInput is a panel inventory replenishment with no bank counterpart.
type TopUpInput struct {
	PanelID string
	Points  decimal.Decimal
	Date    time.Time
	ActorID string
}

// BonusInput is a promotional point grant out of panel inventory.
type BonusInput struct {
	PanelID     string
	PlayerID    string
	Points      decimal.Decimal
	ReferenceID string
	Date        time.Time
	ActorID     string
}

// TransactionResult reports the rows and log entries a financial event produced.
type TransactionResult struct {
	Panel     *domain.PanelLedger
	Bank      *domain.BankLedger
	Entries   []*domain.TransactionLogEntry
	WinAmount decimal.Decimal
}

// ProcessDeposit moves amount points from the panel to the player and
// the matching cash into the bank account. Bonus points enlarge the
// player's entitlement and drain panel inventory but never touch bank
// cash.
func (uc *TransactionUseCase) ProcessDeposit(ctx context.Context, input DepositInput) (*TransactionResult, error) {
	result, err := uc.processDeposit(ctx, input)
	if err != nil {
		uc.instr.TransactionFailed(string(domain.ReferenceDeposit))
		uc.audit.Log(ctx, domain.AuditOpDeposit, domain.EntityPanel, input.PanelID,
			auditData(input, err), domain.AuditResultFailure, input.ActorID)

		return nil, err
	}

	uc.instr.TransactionProcessed(string(domain.ReferenceDeposit))
	uc.audit.Log(ctx, domain.AuditOpDeposit, domain.EntityPanel, input.PanelID,
		auditData(input, nil), domain.AuditResultSuccess, input.ActorID)
	uc.publishLedgerUpdate(domain.ReferenceDeposit, input.ReferenceID, result.Panel, result.Bank)

	return result, nil
}

func (uc *TransactionUseCase) processDeposit(ctx context.Context, input DepositInput) (*TransactionResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.BonusPoints.IsNegative() {
		return nil, fmt.Errorf("%w: bonus points must not be negative", domain.ErrInvalidAmount)
	}

	date, today, mode, err := uc.resolveDate(input.Date, input.Mode)
	if err != nil {
		return nil, err
	}

	if err := uc.checkReference(ctx, domain.ReferenceDeposit, input.ReferenceID); err != nil {
		return nil, err
	}

	var result *TransactionResult

	err = uc.retry(ctx, func() error {
		res, err := uc.applyDeposit(ctx, input, date, today, mode)
		if err != nil {
			return err
		}

		result = res

		return nil
	})

	return result, err
}

func (uc *TransactionUseCase) applyDeposit(ctx context.Context, input DepositInput, date, today time.Time, mode ApplyMode) (*TransactionResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Rows are always locked panel, bank, player to keep the lock order
	// stable across concurrent units of work.
	panel, err := uc.lockPanelRow(ctx, tx, input.PanelID, date, today, mode)
	if err != nil {
		return nil, err
	}

	bank, err := uc.lockBankRow(ctx, tx, input.BankAccountID, date, today, mode)
	if err != nil {
		return nil, err
	}

	total := input.Amount.Add(input.BonusPoints)
	if panel.PointsBalance.LessThan(total) {
		return nil, fmt.Errorf("%w: panel %s holds %s points, deposit needs %s",
			domain.ErrInsufficientPoints, panel.PanelID, panel.PointsBalance, total)
	}

	now := uc.now().UTC()

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("deposit of %s with %s bonus points", input.Amount, input.BonusPoints)
	}

	panelEntry := uc.newEntry(domain.EntityPanel, panel.PanelID, domain.DirectionCredit, input.Amount,
		domain.ReferenceDeposit, input.ReferenceID, domain.EntityBank, bank.BankAccountID, description, date, now)
	bankEntry := uc.newEntry(domain.EntityBank, bank.BankAccountID, domain.DirectionDebit, input.Amount,
		domain.ReferenceDeposit, input.ReferenceID, domain.EntityPanel, panel.PanelID, description, date, now)

	if err := uc.logRepo.Create(ctx, tx, panelEntry); err != nil {
		return nil, err
	}

	if err := uc.logRepo.Create(ctx, tx, bankEntry); err != nil {
		return nil, err
	}

	panel.ApplyDeposit(input.Amount, input.BonusPoints)
	uc.calc.ComputePanelMetrics(panel)
	panel.UpdatedAt = now

	if err := uc.panelRepo.Update(ctx, tx, panel); err != nil {
		return nil, err
	}

	bank.ApplyDeposit(input.Amount)
	uc.calc.ComputeBankMetrics(bank)
	bank.UpdatedAt = now

	if err := uc.bankRepo.Update(ctx, tx, bank); err != nil {
		return nil, err
	}

	if mode == ApplyLive && input.PlayerID != "" {
		if err := uc.creditPlayer(ctx, tx, input.PlayerID, total, domain.PlayerTxDeposit, input.ReferenceID, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &TransactionResult{
		Panel:   panel,
		Bank:    bank,
		Entries: []*domain.TransactionLogEntry{panelEntry, bankEntry},
	}, nil
}

// ProcessWithdrawal pays amount out of the bank account and returns the
// points to the panel. If the player's tracked balance is short of the
// requested amount, the shortfall is recorded as a synthesized Win first
// so the balance lands at the expected post-withdrawal value. This
// models an externally settled game result discovered at cash-out time.
func (uc *TransactionUseCase) ProcessWithdrawal(ctx context.Context, input WithdrawalInput) (*TransactionResult, error) {
	result, err := uc.processWithdrawal(ctx, input)
	if err != nil {
		uc.instr.TransactionFailed(string(domain.ReferenceWithdrawal))
		uc.audit.Log(ctx, domain.AuditOpWithdrawal, domain.EntityPanel, input.PanelID,
			auditData(input, err), domain.AuditResultFailure, input.ActorID)

		return nil, err
	}

	uc.instr.TransactionProcessed(string(domain.ReferenceWithdrawal))
	uc.audit.Log(ctx, domain.AuditOpWithdrawal, domain.EntityPanel, input.PanelID,
		auditData(input, nil), domain.AuditResultSuccess, input.ActorID)
	uc.publishLedgerUpdate(domain.ReferenceWithdrawal, input.ReferenceID, result.Panel, result.Bank)

	return result, nil
}

func (uc *TransactionUseCase) processWithdrawal(ctx context.Context, input WithdrawalInput) (*TransactionResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Charge.IsNegative() {
		return nil, domain.ErrInvalidCharge
	}

	date, today, mode, err := uc.resolveDate(input.Date, input.Mode)
	if err != nil {
		return nil, err
	}

	if err := uc.checkReference(ctx, domain.ReferenceWithdrawal, input.ReferenceID); err != nil {
		return nil, err
	}

	var result *TransactionResult

	err = uc.retry(ctx, func() error {
		res, err := uc.applyWithdrawal(ctx, input, date, today, mode)
		if err != nil {
			return err
		}

		result = res

		return nil
	})

	return result, err
}

func (uc *TransactionUseCase) applyWithdrawal(ctx context.Context, input WithdrawalInput, date, today time.Time, mode ApplyMode) (*TransactionResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	panel, err := uc.lockPanelRow(ctx, tx, input.PanelID, date, today, mode)
	if err != nil {
		return nil, err
	}

	bank, err := uc.lockBankRow(ctx, tx, input.BankAccountID, date, today, mode)
	if err != nil {
		return nil, err
	}

	if bank.ClosingBalance.LessThan(input.Amount) {
		return nil, fmt.Errorf("%w: bank account %s holds %s, withdrawal needs %s",
			domain.ErrInsufficientBalance, bank.BankAccountID, bank.ClosingBalance, input.Amount)
	}

	now := uc.now().UTC()
	winAmount := decimal.Zero

	if mode == ApplyLive && input.PlayerID != "" {
		winAmount, err = uc.debitPlayerWithWinInference(ctx, tx, input.PlayerID, input.Amount, input.ReferenceID, now)
		if err != nil {
			return nil, err
		}
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("withdrawal of %s with charge %s", input.Amount, input.Charge)
	}

	panelEntry := uc.newEntry(domain.EntityPanel, panel.PanelID, domain.DirectionDebit, input.Amount,
		domain.ReferenceWithdrawal, input.ReferenceID, domain.EntityBank, bank.BankAccountID, description, date, now)
	bankEntry := uc.newEntry(domain.EntityBank, bank.BankAccountID, domain.DirectionCredit, input.Amount,
		domain.ReferenceWithdrawal, input.ReferenceID, domain.EntityPanel, panel.PanelID, description, date, now)

	if err := uc.logRepo.Create(ctx, tx, panelEntry); err != nil {
		return nil, err
	}

	if err := uc.logRepo.Create(ctx, tx, bankEntry); err != nil {
		return nil, err
	}

	panel.ApplyWithdrawal(input.Amount)
	uc.calc.ComputePanelMetrics(panel)
	panel.UpdatedAt = now

	if err := uc.panelRepo.Update(ctx, tx, panel); err != nil {
		return nil, err
	}

	bank.ApplyWithdrawal(input.Amount, input.Charge)
	uc.calc.ComputeBankMetrics(bank)
	bank.UpdatedAt = now

	if err := uc.bankRepo.Update(ctx, tx, bank); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &TransactionResult{
		Panel:     panel,
		Bank:      bank,
		Entries:   []*domain.TransactionLogEntry{panelEntry, bankEntry},
		WinAmount: winAmount,
	}, nil
}

// debitPlayerWithWinInference debits the player's tracked balance,
// crediting an inferred Win for any shortfall first. Returns the win
// amount, zero when the balance covered the withdrawal.
func (uc *TransactionUseCase) debitPlayerWithWinInference(ctx context.Context, tx Transaction, playerID string, amount decimal.Decimal, referenceID string, now time.Time) (decimal.Decimal, error) {
	player, err := uc.playerRepo.GetByIDForUpdate(ctx, tx, playerID)
	if err != nil {
		return decimal.Zero, err
	}

	winAmount := decimal.Zero

	if player.Balance.LessThan(amount) {
		winAmount = amount.Sub(player.Balance)
		winTx := &domain.PlayerTransaction{
			ID:            uc.idGen.Generate(),
			PlayerID:      playerID,
			Type:          domain.PlayerTxWin,
			Amount:        winAmount,
			BalanceBefore: player.Balance,
			BalanceAfter:  player.Balance.Add(winAmount),
			ReferenceID:   referenceID,
			Description:   "win inferred at cash-out",
			CreatedAt:     now,
		}

		if err := uc.playerRepo.CreateTransaction(ctx, tx, winTx); err != nil {
			return decimal.Zero, err
		}

		player.Balance = player.Balance.Add(winAmount)
	}

	after := player.Balance.Sub(amount)
	withdrawalTx := &domain.PlayerTransaction{
		ID:            uc.idGen.Generate(),
		PlayerID:      playerID,
		Type:          domain.PlayerTxWithdrawal,
		Amount:        amount,
		BalanceBefore: player.Balance,
		BalanceAfter:  after,
		ReferenceID:   referenceID,
		CreatedAt:     now,
	}

	if err := uc.playerRepo.CreateTransaction(ctx, tx, withdrawalTx); err != nil {
		return decimal.Zero, err
	}

	if err := uc.playerRepo.UpdateBalance(ctx, tx, playerID, after, now); err != nil {
		return decimal.Zero, err
	}

	return winAmount, nil
}

// ProcessTopUp credits replenishment points to a panel. No bank
// counterpart: a top-up is inventory, not cash movement.
func (uc *TransactionUseCase) ProcessTopUp(ctx context.Context, input TopUpInput) (*TransactionResult, error) {
	result, err := uc.processTopUp(ctx, input)
	if err != nil {
		uc.instr.TransactionFailed(string(domain.ReferenceTopUp))
		uc.audit.Log(ctx, domain.AuditOpTopUp, domain.EntityPanel, input.PanelID,
			auditData(input, err), domain.AuditResultFailure, input.ActorID)

		return nil, err
	}

	uc.instr.TransactionProcessed(string(domain.ReferenceTopUp))
	uc.audit.Log(ctx, domain.AuditOpTopUp, domain.EntityPanel, input.PanelID,
		auditData(input, nil), domain.AuditResultSuccess, input.ActorID)
	uc.publishLedgerUpdate(domain.ReferenceTopUp, "", result.Panel, nil)

	return result, nil
}

func (uc *TransactionUseCase) processTopUp(ctx context.Context, input TopUpInput) (*TransactionResult, error) {
	if err := domain.ValidateAmount(input.Points); err != nil {
		return nil, err
	}

	date, today, mode, err := uc.resolveDate(input.Date, "")
	if err != nil {
		return nil, err
	}

	var result *TransactionResult

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		panel, err := uc.lockPanelRow(ctx, tx, input.PanelID, date, today, mode)
		if err != nil {
			return err
		}

		now := uc.now().UTC()

		entry := uc.newEntry(domain.EntityPanel, panel.PanelID, domain.DirectionCredit, input.Points,
			domain.ReferenceTopUp, "", "", "", fmt.Sprintf("top-up of %s points", input.Points), date, now)

		if err := uc.logRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		panel.ApplyTopUp(input.Points)
		uc.calc.ComputePanelMetrics(panel)
		panel.UpdatedAt = now

		if err := uc.panelRepo.Update(ctx, tx, panel); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &TransactionResult{Panel: panel, Entries: []*domain.TransactionLogEntry{entry}}

		return nil
	})

	return result, err
}

// ProcessBonus grants promotional points to a player out of panel
// inventory. Bonuses are not real money and never touch a bank ledger.
func (uc *TransactionUseCase) ProcessBonus(ctx context.Context, input BonusInput) (*TransactionResult, error) {
	result, err := uc.processBonus(ctx, input)
	if err != nil {
		uc.instr.TransactionFailed(string(domain.ReferenceBonus))
		uc.audit.Log(ctx, domain.AuditOpBonus, domain.EntityPanel, input.PanelID,
			auditData(input, err), domain.AuditResultFailure, input.ActorID)

		return nil, err
	}

	uc.instr.TransactionProcessed(string(domain.ReferenceBonus))
	uc.audit.Log(ctx, domain.AuditOpBonus, domain.EntityPanel, input.PanelID,
		auditData(input, nil), domain.AuditResultSuccess, input.ActorID)
	uc.publishLedgerUpdate(domain.ReferenceBonus, input.ReferenceID, result.Panel, nil)

	return result, nil
}

func (uc *TransactionUseCase) processBonus(ctx context.Context, input BonusInput) (*TransactionResult, error) {
	if err := domain.ValidateAmount(input.Points); err != nil {
		return nil, err
	}

	date, today, mode, err := uc.resolveDate(input.Date, "")
	if err != nil {
		return nil, err
	}

	if err := uc.checkReference(ctx, domain.ReferenceBonus, input.ReferenceID); err != nil {
		return nil, err
	}

	var result *TransactionResult

	err = uc.retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		panel, err := uc.lockPanelRow(ctx, tx, input.PanelID, date, today, mode)
		if err != nil {
			return err
		}

		if panel.PointsBalance.LessThan(input.Points) {
			return fmt.Errorf("%w: panel %s holds %s points, bonus needs %s",
				domain.ErrInsufficientPoints, panel.PanelID, panel.PointsBalance, input.Points)
		}

		now := uc.now().UTC()

		entry := uc.newEntry(domain.EntityPanel, panel.PanelID, domain.DirectionCredit, input.Points,
			domain.ReferenceBonus, input.ReferenceID, "", "", fmt.Sprintf("bonus of %s points", input.Points), date, now)

		if err := uc.logRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		panel.ApplyBonus(input.Points)
		uc.calc.ComputePanelMetrics(panel)
		panel.UpdatedAt = now

		if err := uc.panelRepo.Update(ctx, tx, panel); err != nil {
			return err
		}

		if mode == ApplyLive && input.PlayerID != "" {
			if err := uc.creditPlayer(ctx, tx, input.PlayerID, input.Points, domain.PlayerTxBonus, input.ReferenceID, now); err != nil {
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = &TransactionResult{Panel: panel, Entries: []*domain.TransactionLogEntry{entry}}

		return nil
	})

	return result, err
}

// resolveDate normalizes the ledger date, rejects far-future dates and
// derives the apply mode when the caller left it unset.
func (uc *TransactionUseCase) resolveDate(date time.Time, mode ApplyMode) (time.Time, time.Time, ApplyMode, error) {
	now := uc.now()
	today := domain.NormalizeDate(now, uc.loc)

	ledgerDate := today
	if !date.IsZero() {
		ledgerDate = domain.NormalizeDate(date, uc.loc)
	}

	if err := domain.ValidateLedgerDate(ledgerDate, today); err != nil {
		return time.Time{}, time.Time{}, "", err
	}

	if mode == "" {
		mode = DeriveMode(ledgerDate, today)
	}

	return ledgerDate, today, mode, nil
}

// checkReference rejects a duplicate UTR before the unit of work starts.
func (uc *TransactionUseCase) checkReference(ctx context.Context, refType domain.ReferenceType, referenceID string) error {
	if referenceID == "" {
		return nil
	}

	exists, err := uc.logRepo.ExistsByReference(ctx, refType, referenceID)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s %s", domain.ErrDuplicateReference, refType, referenceID)
	}

	return nil
}

func (uc *TransactionUseCase) lockPanelRow(ctx context.Context, tx Transaction, panelID string, date, today time.Time, mode ApplyMode) (*domain.PanelLedger, error) {
	row, err := uc.panelRepo.GetForUpdate(ctx, tx, panelID, date)

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrLedgerNotFound):
		if mode == ApplyHistorical {
			return nil, fmt.Errorf("%w: panel %s on %s", domain.ErrLedgerNotFound, panelID, date.Format(dateLayout))
		}

		row, err = uc.createPanelRow(ctx, tx, panelID, date)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if row.Status == domain.StatusClosed {
		return nil, fmt.Errorf("%w: ledger for %s", domain.ErrLedgerClosed, date.Format(dateLayout))
	}

	if mode == ApplyLive && date.Before(today) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLedgerInPast, date.Format(dateLayout))
	}

	return row, nil
}

func (uc *TransactionUseCase) lockBankRow(ctx context.Context, tx Transaction, bankAccountID string, date, today time.Time, mode ApplyMode) (*domain.BankLedger, error) {
	row, err := uc.bankRepo.GetForUpdate(ctx, tx, bankAccountID, date)

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrLedgerNotFound):
		if mode == ApplyHistorical {
			return nil, fmt.Errorf("%w: bank account %s on %s", domain.ErrLedgerNotFound, bankAccountID, date.Format(dateLayout))
		}

		row, err = uc.createBankRow(ctx, tx, bankAccountID, date)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if row.Status == domain.StatusClosed {
		return nil, fmt.Errorf("%w: ledger for %s", domain.ErrLedgerClosed, date.Format(dateLayout))
	}

	if mode == ApplyLive && date.Before(today) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLedgerInPast, date.Format(dateLayout))
	}

	return row, nil
}

// createPanelRow lazily creates a fresh row for an entity's first access
// of the day. Balances start at zero; opening corrections flow through
// top-ups.
func (uc *TransactionUseCase) createPanelRow(ctx context.Context, tx Transaction, panelID string, date time.Time) (*domain.PanelLedger, error) {
	now := uc.now().UTC()
	row := &domain.PanelLedger{
		ID:         uc.idGen.Generate(),
		PanelID:    panelID,
		LedgerDate: date,
		Status:     domain.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.panelRepo.Create(ctx, tx, row); err != nil {
		return nil, err
	}

	return row, nil
}

func (uc *TransactionUseCase) createBankRow(ctx context.Context, tx Transaction, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	now := uc.now().UTC()
	row := &domain.BankLedger{
		ID:            uc.idGen.Generate(),
		BankAccountID: bankAccountID,
		LedgerDate:    date,
		Status:        domain.StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.bankRepo.Create(ctx, tx, row); err != nil {
		return nil, err
	}

	return row, nil
}

func (uc *TransactionUseCase) creditPlayer(ctx context.Context, tx Transaction, playerID string, amount decimal.Decimal, txType domain.PlayerTransactionType, referenceID string, now time.Time) error {
	player, err := uc.playerRepo.GetByIDForUpdate(ctx, tx, playerID)
	if err != nil {
		return err
	}

	newBalance := player.Balance.Add(amount)
	ptx := &domain.PlayerTransaction{
		ID:            uc.idGen.Generate(),
		PlayerID:      playerID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: player.Balance,
		BalanceAfter:  newBalance,
		ReferenceID:   referenceID,
		CreatedAt:     now,
	}

	if err := uc.playerRepo.CreateTransaction(ctx, tx, ptx); err != nil {
		return err
	}

	return uc.playerRepo.UpdateBalance(ctx, tx, playerID, newBalance, now)
}

func (uc *TransactionUseCase) newEntry(
	entityType domain.EntityType,
	entityID string,
	direction domain.Direction,
	amount decimal.Decimal,
	refType domain.ReferenceType,
	referenceID string,
	relatedType domain.EntityType,
	relatedID string,
	description string,
	ledgerDate, now time.Time,
) *domain.TransactionLogEntry {
	return &domain.TransactionLogEntry{
		ID:                uc.idGen.Generate(),
		TransactionDate:   now,
		LedgerDate:        ledgerDate,
		EntityType:        entityType,
		EntityID:          entityID,
		Direction:         direction,
		Amount:            amount,
		ReferenceType:     refType,
		ReferenceID:       referenceID,
		RelatedEntityType: relatedType,
		RelatedEntityID:   relatedID,
		Description:       description,
		CreatedAt:         now,
	}
}

func (uc *TransactionUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func (uc *TransactionUseCase) publishLedgerUpdate(refType domain.ReferenceType, referenceID string, panel *domain.PanelLedger, bank *domain.BankLedger) {
	if uc.notifier == nil {
		return
	}

	occurred := uc.now().UTC()

	if panel != nil {
		uc.notifier.Publish(domain.LedgerEvent{
			Type:           domain.EventTypeLedgerUpdated,
			EntityType:     string(domain.EntityPanel),
			EntityID:       panel.PanelID,
			LedgerDate:     panel.LedgerDate.Format(dateLayout),
			ClosingBalance: panel.ClosingBalance.String(),
			ReferenceType:  string(refType),
			ReferenceID:    referenceID,
			OccurredAt:     occurred,
		})
	}

	if bank != nil {
		uc.notifier.Publish(domain.LedgerEvent{
			Type:           domain.EventTypeLedgerUpdated,
			EntityType:     string(domain.EntityBank),
			EntityID:       bank.BankAccountID,
			LedgerDate:     bank.LedgerDate.Format(dateLayout),
			ClosingBalance: bank.ClosingBalance.String(),
			ReferenceType:  string(refType),
			ReferenceID:    referenceID,
			OccurredAt:     occurred,
		})
	}
}

func auditData(input any, err error) domain.JSON {
	data := domain.JSON{"request": domain.MarshalState(input)}
	if err != nil {
		data["error"] = err.Error()
	}

	return data
}
