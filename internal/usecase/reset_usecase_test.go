package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
	"github.com/exchops/panelledger/internal/usecase/mocks"
)

type resetFixture struct {
	panelRepo  *mocks.MockPanelLedgerRepository
	bankRepo   *mocks.MockBankLedgerRepository
	entityRepo *mocks.MockEntityRepository
	auditRepo  *mocks.MockAuditRepository
	txManager  *mocks.MockTransactionManager
	notifier   *mocks.MockNotifier
	instr      *mocks.MockInstrumentation
	uc         *usecase.ResetUseCase
	today      time.Time
	yesterday  time.Time
}

func newResetFixture() *resetFixture {
	f := &resetFixture{
		panelRepo:  mocks.NewMockPanelLedgerRepository(),
		bankRepo:   mocks.NewMockBankLedgerRepository(),
		entityRepo: mocks.NewMockEntityRepository(),
		auditRepo:  mocks.NewMockAuditRepository(),
		txManager:  mocks.NewMockTransactionManager(),
		notifier:   mocks.NewMockNotifier(),
		instr:      mocks.NewMockInstrumentation(),
		today:      domain.NormalizeDate(time.Now(), time.UTC),
	}
	f.yesterday = f.today.AddDate(0, 0, -1)

	logger := zerolog.Nop()
	audit := usecase.NewAuditUseCase(f.auditRepo, f.instr, logger)
	f.uc = usecase.NewResetUseCase(f.txManager, f.panelRepo, f.bankRepo, f.entityRepo,
		audit, f.notifier, f.instr, time.UTC, logger)

	return f
}

func (f *resetFixture) seedYesterday() {
	f.panelRepo.Seed(&domain.PanelLedger{
		ID:             "pl-y",
		PanelID:        "panel-1",
		LedgerDate:     f.yesterday,
		OpeningBalance: dec("100000"),
		ClosingBalance: dec("99475"),
		PointsBalance:  dec("99475"),
		TotalDeposits:  dec("500"),
		BonusPoints:    dec("25"),
		Status:         domain.StatusOpen,
	})
	f.bankRepo.Seed(&domain.BankLedger{
		ID:               "bl-y",
		BankAccountID:    "bank-1",
		LedgerDate:       f.yesterday,
		OpeningBalance:   dec("5000"),
		ClosingBalance:   dec("7000"),
		TotalDeposits:    dec("2500"),
		TotalWithdrawals: dec("500"),
		TotalCharges:     dec("10"),
		Status:           domain.StatusOpen,
	})
}

func TestResetUseCase_PerformDailyReset(t *testing.T) {
	f := newResetFixture()
	f.seedYesterday()

	summary, err := f.uc.PerformDailyReset(context.Background(), "scheduler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.PanelsClosed != 1 || summary.BanksClosed != 1 {
		t.Errorf("closed = %d/%d, want 1/1", summary.PanelsClosed, summary.BanksClosed)
	}
	if summary.PanelsCreated != 1 || summary.BanksCreated != 1 {
		t.Errorf("created = %d/%d, want 1/1", summary.PanelsCreated, summary.BanksCreated)
	}

	closedPanel, err := f.panelRepo.Get(context.Background(), "panel-1", f.yesterday)
	if err != nil {
		t.Fatalf("yesterday's panel row vanished: %v", err)
	}
	if closedPanel.Status != domain.StatusClosed {
		t.Errorf("yesterday's panel status = %s, want CLOSED", closedPanel.Status)
	}

	todayPanel, err := f.panelRepo.Get(context.Background(), "panel-1", f.today)
	if err != nil {
		t.Fatalf("today's panel row missing: %v", err)
	}
	if !todayPanel.OpeningBalance.Equal(dec("99475")) {
		t.Errorf("carried opening = %s, want yesterday's closing 99475", todayPanel.OpeningBalance)
	}
	if !todayPanel.TotalDeposits.IsZero() || !todayPanel.BonusPoints.IsZero() {
		t.Error("today's panel counters must start at zero")
	}
	if todayPanel.Status != domain.StatusOpen {
		t.Errorf("today's panel status = %s, want OPEN", todayPanel.Status)
	}

	todayBank, err := f.bankRepo.Get(context.Background(), "bank-1", f.today)
	if err != nil {
		t.Fatalf("today's bank row missing: %v", err)
	}
	if !todayBank.OpeningBalance.Equal(dec("7000")) {
		t.Errorf("carried bank opening = %s, want 7000", todayBank.OpeningBalance)
	}
	if !todayBank.TotalCharges.IsZero() {
		t.Error("today's bank charges must start at zero")
	}

	if len(f.txManager.Transactions) != 1 || !f.txManager.Transactions[0].Committed {
		t.Error("rollover should run in one committed transaction")
	}
	if f.instr.Resets != 1 {
		t.Error("expected one reset completion signal")
	}
	if last := f.auditRepo.Last(); last == nil || last.Operation != string(domain.AuditOpDailyReset) {
		t.Error("expected a daily reset audit entry")
	}
	if len(f.notifier.Events) != 1 || f.notifier.Events[0].Type != domain.EventTypeResetCompleted {
		t.Error("expected a reset completed event")
	}
}

func TestResetUseCase_PerformDailyReset_Idempotent(t *testing.T) {
	f := newResetFixture()
	f.seedYesterday()

	if _, err := f.uc.PerformDailyReset(context.Background(), "scheduler"); err != nil {
		t.Fatalf("first reset failed: %v", err)
	}

	summary, err := f.uc.PerformDailyReset(context.Background(), "scheduler")
	if err != nil {
		t.Fatalf("second reset failed: %v", err)
	}

	if summary.PanelsClosed != 0 || summary.PanelsCreated != 0 {
		t.Errorf("second run closed %d / created %d, want 0/0", summary.PanelsClosed, summary.PanelsCreated)
	}

	todayPanel, err := f.panelRepo.Get(context.Background(), "panel-1", f.today)
	if err != nil {
		t.Fatal(err)
	}
	if !todayPanel.OpeningBalance.Equal(dec("99475")) {
		t.Errorf("re-run corrupted opening = %s, want 99475", todayPanel.OpeningBalance)
	}
}

func TestResetUseCase_PerformDailyReset_RewindsEarlyTransactions(t *testing.T) {
	f := newResetFixture()

	// A panel that only came into existence today, with transactions that
	// landed on its row before the rollover ran. The rollover must rewind
	// the closing balance to the opening position and zero the counters
	// together, or the row starts the day unbalanced.
	f.panelRepo.Seed(&domain.PanelLedger{
		ID:             "pl-early",
		PanelID:        "panel-early",
		LedgerDate:     f.today,
		OpeningBalance: dec("0"),
		ClosingBalance: dec("-525"),
		PointsBalance:  dec("-525"),
		TotalDeposits:  dec("500"),
		BonusPoints:    dec("25"),
		Status:         domain.StatusOpen,
	})
	f.panelRepo.Seed(&domain.PanelLedger{
		ID:             "pl-locked",
		PanelID:        "panel-locked",
		LedgerDate:     f.today,
		OpeningBalance: dec("1000"),
		ClosingBalance: dec("800"),
		PointsBalance:  dec("800"),
		TotalDeposits:  dec("200"),
		Status:         domain.StatusClosed,
	})
	f.bankRepo.Seed(&domain.BankLedger{
		ID:             "bl-early",
		BankAccountID:  "bank-early",
		LedgerDate:     f.today,
		OpeningBalance: dec("0"),
		ClosingBalance: dec("2500"),
		TotalDeposits:  dec("2500"),
		Status:         domain.StatusOpen,
	})

	if _, err := f.uc.PerformDailyReset(context.Background(), "scheduler"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row, err := f.panelRepo.Get(context.Background(), "panel-early", f.today)
	if err != nil {
		t.Fatal(err)
	}
	if !row.TotalDeposits.IsZero() || !row.BonusPoints.IsZero() {
		t.Errorf("counters = %s/%s, want zeroes", row.TotalDeposits, row.BonusPoints)
	}
	if !row.ClosingBalance.Equal(row.OpeningBalance) {
		t.Errorf("closing = %s, want opening %s", row.ClosingBalance, row.OpeningBalance)
	}
	if !row.PointsBalance.Equal(row.OpeningBalance) {
		t.Errorf("points = %s, want opening %s", row.PointsBalance, row.OpeningBalance)
	}
	if !row.IsBalanced() {
		t.Errorf("row must start the day balanced, got %+v", row)
	}

	locked, err := f.panelRepo.Get(context.Background(), "panel-locked", f.today)
	if err != nil {
		t.Fatal(err)
	}
	if !locked.ClosingBalance.Equal(dec("800")) || !locked.TotalDeposits.Equal(dec("200")) {
		t.Errorf("locked row mutated: closing %s deposits %s", locked.ClosingBalance, locked.TotalDeposits)
	}

	bank, err := f.bankRepo.Get(context.Background(), "bank-early", f.today)
	if err != nil {
		t.Fatal(err)
	}
	if !bank.TotalDeposits.IsZero() {
		t.Errorf("bank deposits = %s, want zero", bank.TotalDeposits)
	}
	if !bank.ClosingBalance.Equal(bank.OpeningBalance) {
		t.Errorf("bank closing = %s, want opening %s", bank.ClosingBalance, bank.OpeningBalance)
	}
	if !bank.IsBalanced() {
		t.Errorf("bank row must start the day balanced, got %+v", bank)
	}
}

func TestResetUseCase_PerformDailyReset_RollsBackOnStepFailure(t *testing.T) {
	f := newResetFixture()
	f.seedYesterday()

	stepErr := errors.New("carry forward failed")
	f.panelRepo.CarryForwardFunc = func(ctx context.Context, tx usecase.Transaction, fromDate, toDate, updatedAt time.Time) (int64, error) {
		return 0, stepErr
	}

	_, err := f.uc.PerformDailyReset(context.Background(), "scheduler")
	if !errors.Is(err, stepErr) {
		t.Fatalf("error = %v, want the step failure", err)
	}

	if len(f.txManager.Transactions) != 1 || !f.txManager.Transactions[0].RolledBack {
		t.Error("failed rollover should roll back")
	}
	if last := f.auditRepo.Last(); last == nil || last.Result != string(domain.AuditResultError) {
		t.Error("expected an error audit entry")
	}
	if f.instr.Resets != 0 {
		t.Error("no completion signal on failure")
	}
}

func TestResetUseCase_ManualReset_RefusesClosedTarget(t *testing.T) {
	f := newResetFixture()
	f.panelRepo.Seed(&domain.PanelLedger{
		ID:         "pl-t",
		PanelID:    "panel-1",
		LedgerDate: f.today,
		Status:     domain.StatusClosed,
	})

	_, err := f.uc.ManualReset(context.Background(), f.today, "admin-1")
	if !errors.Is(err, domain.ErrLedgerAlreadyClosed) {
		t.Fatalf("error = %v, want ErrLedgerAlreadyClosed", err)
	}
	if last := f.auditRepo.Last(); last == nil || last.Result != string(domain.AuditResultFailure) {
		t.Error("refused manual reset should be audited as failure")
	}
}

func TestResetUseCase_ManualReset(t *testing.T) {
	f := newResetFixture()
	f.seedYesterday()

	summary, err := f.uc.ManualReset(context.Background(), f.today, "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.PanelsClosed != 1 || summary.BanksClosed != 1 {
		t.Errorf("closed = %d/%d, want 1/1", summary.PanelsClosed, summary.BanksClosed)
	}
	if last := f.auditRepo.Last(); last == nil || last.Operation != string(domain.AuditOpManualReset) {
		t.Error("expected a manual reset audit entry")
	}
}

func TestResetUseCase_IsResetComplete(t *testing.T) {
	f := newResetFixture()
	f.entityRepo.ActivePanels = 1
	f.entityRepo.ActiveBanks = 1
	f.seedYesterday()

	status, err := f.uc.IsResetComplete(context.Background(), f.today)
	if err != nil {
		t.Fatal(err)
	}
	if status.Complete {
		t.Error("reset should be incomplete before the rollover runs")
	}

	if _, err := f.uc.PerformDailyReset(context.Background(), "scheduler"); err != nil {
		t.Fatal(err)
	}

	status, err = f.uc.IsResetComplete(context.Background(), f.today)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Complete {
		t.Errorf("reset should be complete, status %+v", status)
	}
}
