package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
)

const snapshotKey = "ledger:snapshot"

// LedgerSnapshot is a point-in-time aggregate over the day's ledger
// rows. Dashboards read the cached copy so their polling never touches
// the hot tables.
type LedgerSnapshot struct {
	Date             string          `json:"date"`
	GeneratedAt      time.Time       `json:"generated_at"`
	PanelCount       int             `json:"panel_count"`
	BankCount        int             `json:"bank_count"`
	OpenRows         int             `json:"open_rows"`
	TotalPoints      decimal.Decimal `json:"total_points"`
	TotalCash        decimal.Decimal `json:"total_cash"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
}

// SnapshotUseCase maintains the cached ledger snapshot.
type SnapshotUseCase struct {
	panelRepo PanelLedgerRepository
	bankRepo  BankLedgerRepository
	cache     Cache
	ttl       time.Duration
	logger    zerolog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewSnapshotUseCase creates a new SnapshotUseCase.
func NewSnapshotUseCase(
	panelRepo PanelLedgerRepository,
	bankRepo BankLedgerRepository,
	cache Cache,
	ttl time.Duration,
	loc *time.Location,
	logger zerolog.Logger,
) *SnapshotUseCase {
	if loc == nil {
		loc = time.UTC
	}

	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	return &SnapshotUseCase{
		panelRepo: panelRepo,
		bankRepo:  bankRepo,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// Refresh rebuilds the snapshot from today's rows and stores it in the
// cache.
func (uc *SnapshotUseCase) Refresh(ctx context.Context) (*LedgerSnapshot, error) {
	today := domain.NormalizeDate(uc.now(), uc.loc)

	panels, err := uc.panelRepo.ListByDate(ctx, today, "")
	if err != nil {
		return nil, err
	}

	banks, err := uc.bankRepo.ListByDate(ctx, today, "")
	if err != nil {
		return nil, err
	}

	snap := &LedgerSnapshot{
		Date:        today.Format("2006-01-02"),
		GeneratedAt: uc.now(),
		PanelCount:  len(panels),
		BankCount:   len(banks),
	}

	for _, p := range panels {
		snap.TotalPoints = snap.TotalPoints.Add(p.PointsBalance)
		snap.TotalDeposits = snap.TotalDeposits.Add(p.TotalDeposits)
		snap.TotalWithdrawals = snap.TotalWithdrawals.Add(p.TotalWithdrawals)
		if p.Status == domain.StatusOpen {
			snap.OpenRows++
		}
	}

	for _, b := range banks {
		snap.TotalCash = snap.TotalCash.Add(b.ClosingBalance)
		if b.Status == domain.StatusOpen {
			snap.OpenRows++
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	// A failed cache write only degrades reads to the live path.
	if err := uc.cache.Set(ctx, snapshotKey, data, uc.ttl); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to cache ledger snapshot")
	}

	return snap, nil
}

// Get returns the cached snapshot, rebuilding it on a miss.
func (uc *SnapshotUseCase) Get(ctx context.Context) (*LedgerSnapshot, error) {
	data, err := uc.cache.Get(ctx, snapshotKey)
	if err == nil && len(data) > 0 {
		var snap LedgerSnapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			return &snap, nil
		}
	}

	return uc.Refresh(ctx)
}

// Start runs the periodic refresh loop until the context is cancelled.
func (uc *SnapshotUseCase) Start(ctx context.Context, interval time.Duration) error {
	if interval == 0 {
		interval = 5 * time.Minute
	}

	uc.logger.Info().Dur("interval", interval).Msg("snapshot refresher started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := uc.Refresh(ctx); err != nil {
		uc.logger.Error().Err(err).Msg("initial snapshot refresh failed")
	}

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info().Msg("snapshot refresher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.Refresh(ctx); err != nil {
				uc.logger.Error().Err(err).Msg("snapshot refresh failed")
			}
		}
	}
}
