package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
	"github.com/exchops/panelledger/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type txFixture struct {
	panelRepo  *mocks.MockPanelLedgerRepository
	bankRepo   *mocks.MockBankLedgerRepository
	logRepo    *mocks.MockTransactionLogRepository
	playerRepo *mocks.MockPlayerRepository
	auditRepo  *mocks.MockAuditRepository
	txManager  *mocks.MockTransactionManager
	notifier   *mocks.MockNotifier
	instr      *mocks.MockInstrumentation
	uc         *usecase.TransactionUseCase
	today      time.Time
}

func newTxFixture() *txFixture {
	f := &txFixture{
		panelRepo:  mocks.NewMockPanelLedgerRepository(),
		bankRepo:   mocks.NewMockBankLedgerRepository(),
		logRepo:    mocks.NewMockTransactionLogRepository(),
		playerRepo: mocks.NewMockPlayerRepository(),
		auditRepo:  mocks.NewMockAuditRepository(),
		txManager:  mocks.NewMockTransactionManager(),
		notifier:   mocks.NewMockNotifier(),
		instr:      mocks.NewMockInstrumentation(),
		today:      domain.NormalizeDate(time.Now(), time.UTC),
	}

	logger := zerolog.Nop()
	calc := usecase.NewCalculationUseCase(f.txManager, f.panelRepo, f.bankRepo, f.instr, logger)
	audit := usecase.NewAuditUseCase(f.auditRepo, f.instr, logger)

	f.uc = usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TxManager:  f.txManager,
		PanelRepo:  f.panelRepo,
		BankRepo:   f.bankRepo,
		LogRepo:    f.logRepo,
		PlayerRepo: f.playerRepo,
		Calc:       calc,
		Audit:      audit,
		IDGen:      mocks.NewMockIDGenerator(),
		Retrier:    &mocks.MockRetrier{},
		Notifier:   f.notifier,
		Instr:      f.instr,
		Logger:     logger,
		Location:   time.UTC,
	})

	return f
}

func (f *txFixture) seedPanel(points string) *domain.PanelLedger {
	row := &domain.PanelLedger{
		ID:             "pl-1",
		PanelID:        "panel-1",
		LedgerDate:     f.today,
		OpeningBalance: dec(points),
		ClosingBalance: dec(points),
		PointsBalance:  dec(points),
		Status:         domain.StatusOpen,
	}
	f.panelRepo.Seed(row)

	return row
}

func (f *txFixture) seedBank(cash string) *domain.BankLedger {
	row := &domain.BankLedger{
		ID:             "bl-1",
		BankAccountID:  "bank-1",
		LedgerDate:     f.today,
		OpeningBalance: dec(cash),
		ClosingBalance: dec(cash),
		Status:         domain.StatusOpen,
	}
	f.bankRepo.Seed(row)

	return row
}

func (f *txFixture) seedPlayer(balance string) *domain.Player {
	player := &domain.Player{ID: "player-1", Name: "test player", Balance: dec(balance)}
	f.playerRepo.Seed(player)

	return player
}

func TestTransactionUseCase_ProcessDeposit(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("100000")
	f.seedBank("5000")
	player := f.seedPlayer("0")

	result, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		PlayerID:      "player-1",
		Amount:        dec("500"),
		BonusPoints:   dec("25"),
		ReferenceID:   "UTR-1001",
		ActorID:       "agent-7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Panel.PointsBalance.Equal(dec("99475")) {
		t.Errorf("panel points = %s, want 99475", result.Panel.PointsBalance)
	}
	if !result.Panel.TotalDeposits.Equal(dec("500")) {
		t.Errorf("panel deposits = %s, want 500", result.Panel.TotalDeposits)
	}
	if !result.Panel.BonusPoints.Equal(dec("25")) {
		t.Errorf("panel bonus = %s, want 25", result.Panel.BonusPoints)
	}
	if !result.Bank.ClosingBalance.Equal(dec("5500")) {
		t.Errorf("bank closing = %s, want 5500", result.Bank.ClosingBalance)
	}
	if !result.Panel.IsBalanced() {
		t.Error("panel row should balance after deposit")
	}
	if !result.Bank.IsBalanced() {
		t.Error("bank row should balance after deposit")
	}

	if len(result.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(result.Entries))
	}
	if result.Entries[0].Direction != domain.DirectionCredit || result.Entries[0].EntityType != domain.EntityPanel {
		t.Errorf("first entry should be a panel credit, got %s %s", result.Entries[0].EntityType, result.Entries[0].Direction)
	}
	if result.Entries[1].Direction != domain.DirectionDebit || result.Entries[1].EntityType != domain.EntityBank {
		t.Errorf("second entry should be a bank debit, got %s %s", result.Entries[1].EntityType, result.Entries[1].Direction)
	}

	// Player entitlement is amount plus bonus.
	if !player.Balance.Equal(dec("525")) {
		t.Errorf("player balance = %s, want 525", player.Balance)
	}

	if len(f.txManager.Transactions) != 1 || !f.txManager.Transactions[0].Committed {
		t.Error("unit of work should have committed")
	}
	if last := f.auditRepo.Last(); last == nil || last.Result != string(domain.AuditResultSuccess) {
		t.Error("expected a success audit entry")
	}
	if len(f.notifier.Events) != 2 {
		t.Errorf("events = %d, want 2", len(f.notifier.Events))
	}
	if f.instr.Processed[string(domain.ReferenceDeposit)] != 1 {
		t.Error("expected one processed signal")
	}
}

func TestTransactionUseCase_ProcessDeposit_InsufficientPoints(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("100")
	f.seedBank("5000")

	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
		ReferenceID:   "UTR-1002",
		ActorID:       "agent-7",
	})
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("error = %v, want ErrInsufficientPoints", err)
	}

	if len(f.logRepo.Entries) != 0 {
		t.Error("no log entries should survive a failed deposit")
	}
	if len(f.txManager.Transactions) != 1 || !f.txManager.Transactions[0].RolledBack {
		t.Error("unit of work should have rolled back")
	}
	if last := f.auditRepo.Last(); last == nil || last.Result != string(domain.AuditResultFailure) {
		t.Error("expected a failure audit entry")
	}
	if f.instr.Failed[string(domain.ReferenceDeposit)] != 1 {
		t.Error("expected one failed signal")
	}
}

func TestTransactionUseCase_ProcessDeposit_DuplicateReference(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("100000")
	f.seedBank("5000")

	input := usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
		ReferenceID:   "UTR-2001",
	}

	if _, err := f.uc.ProcessDeposit(context.Background(), input); err != nil {
		t.Fatalf("first deposit failed: %v", err)
	}

	_, err := f.uc.ProcessDeposit(context.Background(), input)
	if !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("error = %v, want ErrDuplicateReference", err)
	}

	if len(f.logRepo.Entries) != 2 {
		t.Errorf("entries = %d, want the first deposit's 2 only", len(f.logRepo.Entries))
	}
}

func TestTransactionUseCase_ProcessDeposit_ClosedLedger(t *testing.T) {
	f := newTxFixture()
	row := f.seedPanel("100000")
	row.Status = domain.StatusClosed
	f.seedBank("5000")

	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
	})
	if !errors.Is(err, domain.ErrLedgerClosed) {
		t.Fatalf("error = %v, want ErrLedgerClosed", err)
	}
}

func TestTransactionUseCase_ProcessDeposit_InvalidAmount(t *testing.T) {
	f := newTxFixture()

	for _, amount := range []string{"0", "-10"} {
		_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
			PanelID:       "panel-1",
			BankAccountID: "bank-1",
			Amount:        dec(amount),
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("amount %s: error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestTransactionUseCase_ProcessDeposit_HistoricalMissingRow(t *testing.T) {
	f := newTxFixture()
	f.seedBank("5000")

	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
		Date:          f.today.AddDate(0, 0, -2),
	})
	if !errors.Is(err, domain.ErrLedgerNotFound) {
		t.Fatalf("error = %v, want ErrLedgerNotFound for a backdated date without a row", err)
	}
}

func TestTransactionUseCase_ProcessDeposit_HistoricalSkipsPlayer(t *testing.T) {
	f := newTxFixture()
	yesterday := f.today.AddDate(0, 0, -1)

	f.panelRepo.Seed(&domain.PanelLedger{
		ID: "pl-h", PanelID: "panel-1", LedgerDate: yesterday,
		OpeningBalance: dec("1000"), ClosingBalance: dec("1000"), PointsBalance: dec("1000"),
		Status: domain.StatusOpen,
	})
	f.bankRepo.Seed(&domain.BankLedger{
		ID: "bl-h", BankAccountID: "bank-1", LedgerDate: yesterday,
		OpeningBalance: dec("100"), ClosingBalance: dec("100"),
		Status: domain.StatusOpen,
	})
	player := f.seedPlayer("0")

	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		PlayerID:      "player-1",
		Amount:        dec("200"),
		Date:          yesterday,
	})
	if err != nil {
		t.Fatalf("historical deposit into an open backdated row failed: %v", err)
	}

	if !player.Balance.Equal(dec("0")) {
		t.Errorf("historical apply must not touch the live player balance, got %s", player.Balance)
	}
	if len(f.playerRepo.Transactions) != 0 {
		t.Error("historical apply must not write player transactions")
	}
}

func TestTransactionUseCase_ProcessDeposit_LiveRejectsPastDate(t *testing.T) {
	f := newTxFixture()
	yesterday := f.today.AddDate(0, 0, -1)

	f.panelRepo.Seed(&domain.PanelLedger{
		ID: "pl-y", PanelID: "panel-1", LedgerDate: yesterday,
		PointsBalance: dec("1000"), ClosingBalance: dec("1000"),
		Status: domain.StatusOpen,
	})

	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("100"),
		Date:          yesterday,
		Mode:          usecase.ApplyLive,
	})
	if !errors.Is(err, domain.ErrLedgerInPast) {
		t.Fatalf("error = %v, want ErrLedgerInPast", err)
	}
}

func TestTransactionUseCase_ProcessDeposit_LazyRowCreation(t *testing.T) {
	f := newTxFixture()
	f.seedBank("5000")

	// No panel row for today yet. Live mode creates one with zero
	// balances, so the deposit itself must then fail on inventory.
	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
	})
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("error = %v, want ErrInsufficientPoints on a freshly created zero row", err)
	}
}

func TestTransactionUseCase_ProcessWithdrawal(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("99475")
	f.seedBank("7000")
	f.seedPlayer("500")

	result, err := f.uc.ProcessWithdrawal(context.Background(), usecase.WithdrawalInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		PlayerID:      "player-1",
		Amount:        dec("500"),
		Charge:        dec("10"),
		ReferenceID:   "UTR-3001",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Panel.PointsBalance.Equal(dec("99975")) {
		t.Errorf("panel points = %s, want 99975", result.Panel.PointsBalance)
	}
	if !result.Bank.ClosingBalance.Equal(dec("6500")) {
		t.Errorf("bank closing = %s, want 6500", result.Bank.ClosingBalance)
	}
	if !result.Bank.TotalCharges.Equal(dec("10")) {
		t.Errorf("bank charges = %s, want 10", result.Bank.TotalCharges)
	}
	if !result.Bank.NetBalance().Equal(dec("6490")) {
		t.Errorf("bank net = %s, want 6490", result.Bank.NetBalance())
	}
	if !result.WinAmount.IsZero() {
		t.Errorf("win = %s, want 0 when balance covers the withdrawal", result.WinAmount)
	}
	if len(f.playerRepo.Transactions) != 1 {
		t.Fatalf("player transactions = %d, want just the withdrawal", len(f.playerRepo.Transactions))
	}
}

func TestTransactionUseCase_ProcessWithdrawal_WinInference(t *testing.T) {
	tests := []struct {
		name          string
		balance       string
		amount        string
		wantWin       string
		wantPlayerTxs int
	}{
		{"shortfall becomes a win", "200", "500", "300", 2},
		{"exact balance, no win", "500", "500", "0", 1},
		{"zero balance, full win", "0", "500", "500", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTxFixture()
			f.seedPanel("50000")
			f.seedBank("10000")
			player := f.seedPlayer(tt.balance)

			result, err := f.uc.ProcessWithdrawal(context.Background(), usecase.WithdrawalInput{
				PanelID:       "panel-1",
				BankAccountID: "bank-1",
				PlayerID:      "player-1",
				Amount:        dec(tt.amount),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !result.WinAmount.Equal(dec(tt.wantWin)) {
				t.Errorf("win = %s, want %s", result.WinAmount, tt.wantWin)
			}
			if !player.Balance.IsZero() {
				t.Errorf("player balance = %s, want 0 after cash-out", player.Balance)
			}
			if len(f.playerRepo.Transactions) != tt.wantPlayerTxs {
				t.Fatalf("player transactions = %d, want %d", len(f.playerRepo.Transactions), tt.wantPlayerTxs)
			}
			if tt.wantWin != "0" {
				win := f.playerRepo.Transactions[0]
				if win.Type != domain.PlayerTxWin {
					t.Errorf("first player tx = %s, want win before withdrawal", win.Type)
				}
				if !win.Amount.Equal(dec(tt.wantWin)) {
					t.Errorf("win tx amount = %s, want %s", win.Amount, tt.wantWin)
				}
				if !win.BalanceAfter.Equal(dec(tt.amount)) {
					t.Errorf("balance after win = %s, want %s", win.BalanceAfter, tt.amount)
				}
			}
		})
	}
}

func TestTransactionUseCase_ProcessWithdrawal_InsufficientBankBalance(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("50000")
	f.seedBank("100")

	_, err := f.uc.ProcessWithdrawal(context.Background(), usecase.WithdrawalInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("error = %v, want ErrInsufficientBalance", err)
	}
}

func TestTransactionUseCase_ProcessWithdrawal_NegativeCharge(t *testing.T) {
	f := newTxFixture()

	_, err := f.uc.ProcessWithdrawal(context.Background(), usecase.WithdrawalInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
		Charge:        dec("-1"),
	})
	if !errors.Is(err, domain.ErrInvalidCharge) {
		t.Fatalf("error = %v, want ErrInvalidCharge", err)
	}
}

func TestTransactionUseCase_ProcessTopUp(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("1000")

	result, err := f.uc.ProcessTopUp(context.Background(), usecase.TopUpInput{
		PanelID: "panel-1",
		Points:  dec("250"),
		ActorID: "admin-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Panel.PointsBalance.Equal(dec("1250")) {
		t.Errorf("panel points = %s, want 1250", result.Panel.PointsBalance)
	}
	if !result.Panel.TopUp.Equal(dec("250")) {
		t.Errorf("top-up counter = %s, want 250", result.Panel.TopUp)
	}
	if result.Bank != nil {
		t.Error("a top-up must not touch any bank ledger")
	}
	if len(result.Entries) != 1 || result.Entries[0].ReferenceType != domain.ReferenceTopUp {
		t.Fatalf("expected a single top-up entry, got %+v", result.Entries)
	}
}

func TestTransactionUseCase_ProcessBonus(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("1000")
	player := f.seedPlayer("50")

	result, err := f.uc.ProcessBonus(context.Background(), usecase.BonusInput{
		PanelID:     "panel-1",
		PlayerID:    "player-1",
		Points:      dec("100"),
		ReferenceID: "BONUS-1",
		ActorID:     "admin-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Panel.PointsBalance.Equal(dec("900")) {
		t.Errorf("panel points = %s, want 900", result.Panel.PointsBalance)
	}
	if !result.Panel.BonusPoints.Equal(dec("100")) {
		t.Errorf("bonus counter = %s, want 100", result.Panel.BonusPoints)
	}
	if !player.Balance.Equal(dec("150")) {
		t.Errorf("player balance = %s, want 150", player.Balance)
	}
	if result.Bank != nil {
		t.Error("a bonus must not touch any bank ledger")
	}
}

func TestTransactionUseCase_ProcessBonus_InsufficientInventory(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("50")

	_, err := f.uc.ProcessBonus(context.Background(), usecase.BonusInput{
		PanelID: "panel-1",
		Points:  dec("100"),
	})
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("error = %v, want ErrInsufficientPoints", err)
	}
}

func TestTransactionUseCase_RollbackOnUpdateFailure(t *testing.T) {
	f := newTxFixture()
	f.seedPanel("100000")
	f.seedBank("5000")

	updateErr := errors.New("update blew up")
	f.bankRepo.UpdateFunc = func(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error {
		return updateErr
	}

	_, err := f.uc.ProcessDeposit(context.Background(), usecase.DepositInput{
		PanelID:       "panel-1",
		BankAccountID: "bank-1",
		Amount:        dec("500"),
	})
	if !errors.Is(err, updateErr) {
		t.Fatalf("error = %v, want the update failure", err)
	}

	if len(f.txManager.Transactions) != 1 || !f.txManager.Transactions[0].RolledBack {
		t.Error("unit of work should have rolled back")
	}
	if last := f.auditRepo.Last(); last == nil || last.Result != string(domain.AuditResultFailure) {
		t.Error("expected a failure audit entry")
	}
	if len(f.notifier.Events) != 0 {
		t.Error("no events should be published for a failed transaction")
	}
}
