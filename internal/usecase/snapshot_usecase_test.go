package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
	"github.com/exchops/panelledger/internal/usecase/mocks"
)

type snapshotFixture struct {
	panelRepo *mocks.MockPanelLedgerRepository
	bankRepo  *mocks.MockBankLedgerRepository
	cache     *mocks.MockCache
	uc        *usecase.SnapshotUseCase
	today     time.Time
}

func newSnapshotFixture() *snapshotFixture {
	f := &snapshotFixture{
		panelRepo: mocks.NewMockPanelLedgerRepository(),
		bankRepo:  mocks.NewMockBankLedgerRepository(),
		cache:     mocks.NewMockCache(),
		today:     domain.NormalizeDate(time.Now(), time.UTC),
	}

	f.uc = usecase.NewSnapshotUseCase(f.panelRepo, f.bankRepo, f.cache, time.Minute, time.UTC, zerolog.Nop())

	return f
}

func TestSnapshotUseCase_Refresh(t *testing.T) {
	f := newSnapshotFixture()
	f.panelRepo.Seed(&domain.PanelLedger{
		ID: "pl-1", PanelID: "panel-1", LedgerDate: f.today, Status: domain.StatusOpen,
		PointsBalance: decimal.NewFromInt(50000), TotalDeposits: decimal.NewFromInt(1200),
	})
	f.panelRepo.Seed(&domain.PanelLedger{
		ID: "pl-2", PanelID: "panel-2", LedgerDate: f.today, Status: domain.StatusClosed,
		PointsBalance: decimal.NewFromInt(30000), TotalWithdrawals: decimal.NewFromInt(800),
	})
	f.bankRepo.Seed(&domain.BankLedger{
		ID: "bl-1", BankAccountID: "bank-1", LedgerDate: f.today, Status: domain.StatusOpen,
		ClosingBalance: decimal.NewFromInt(95000),
	})

	snap, err := f.uc.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if snap.PanelCount != 2 || snap.BankCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", snap.PanelCount, snap.BankCount)
	}
	if snap.OpenRows != 2 {
		t.Errorf("open rows = %d, want 2", snap.OpenRows)
	}
	if !snap.TotalPoints.Equal(decimal.NewFromInt(80000)) {
		t.Errorf("total points = %s, want 80000", snap.TotalPoints)
	}
	if !snap.TotalCash.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("total cash = %s, want 95000", snap.TotalCash)
	}
	if !snap.TotalDeposits.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("total deposits = %s, want 1200", snap.TotalDeposits)
	}
	if !snap.TotalWithdrawals.Equal(decimal.NewFromInt(800)) {
		t.Errorf("total withdrawals = %s, want 800", snap.TotalWithdrawals)
	}

	cached, err := f.cache.Get(context.Background(), "ledger:snapshot")
	if err != nil {
		t.Fatalf("snapshot was not cached: %v", err)
	}
	var decoded usecase.LedgerSnapshot
	if err := json.Unmarshal(cached, &decoded); err != nil {
		t.Fatalf("cached snapshot is not valid JSON: %v", err)
	}
	if decoded.Date != f.today.Format("2006-01-02") {
		t.Errorf("cached date = %s, want %s", decoded.Date, f.today.Format("2006-01-02"))
	}
}

func TestSnapshotUseCase_Get_ServesCachedCopy(t *testing.T) {
	f := newSnapshotFixture()
	stored, _ := json.Marshal(&usecase.LedgerSnapshot{Date: "2026-08-31", PanelCount: 7})
	if err := f.cache.Set(context.Background(), "ledger:snapshot", stored, time.Minute); err != nil {
		t.Fatal(err)
	}

	snap, err := f.uc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.PanelCount != 7 {
		t.Errorf("panel count = %d, want cached value 7", snap.PanelCount)
	}
}

func TestSnapshotUseCase_Get_RebuildsOnMiss(t *testing.T) {
	f := newSnapshotFixture()
	f.panelRepo.Seed(&domain.PanelLedger{
		ID: "pl-1", PanelID: "panel-1", LedgerDate: f.today, Status: domain.StatusOpen,
	})

	snap, err := f.uc.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.PanelCount != 1 {
		t.Errorf("panel count = %d, want 1 from rebuild", snap.PanelCount)
	}
}

func TestSnapshotUseCase_Refresh_ToleratesCacheWriteFailure(t *testing.T) {
	f := newSnapshotFixture()
	f.cache.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
		return errors.New("redis down")
	}

	if _, err := f.uc.Refresh(context.Background()); err != nil {
		t.Fatalf("cache failure must not fail the refresh: %v", err)
	}
}

func TestSnapshotUseCase_Start_StopsOnCancel(t *testing.T) {
	f := newSnapshotFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.uc.Start(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
