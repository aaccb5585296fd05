package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

const panelLedgerColumns = `id, panel_id, ledger_date, opening_balance, closing_balance,
	points_balance, total_deposits, total_withdrawals, bonus_points, top_up,
	profit_loss, roi, utilization, status, created_at, updated_at`

// PanelLedgerRepository implements usecase.PanelLedgerRepository.
type PanelLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPanelLedgerRepository creates a new PanelLedgerRepository.
func NewPanelLedgerRepository(pool *pgxpool.Pool) *PanelLedgerRepository {
	return &PanelLedgerRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPanelLedger(row rowScanner) (*domain.PanelLedger, error) {
	var (
		l          domain.PanelLedger
		ledgerDate pgtype.Date
		opening    pgtype.Numeric
		closing    pgtype.Numeric
		points     pgtype.Numeric
		deposits   pgtype.Numeric
		withdrawn  pgtype.Numeric
		bonus      pgtype.Numeric
		topUp      pgtype.Numeric
		profitLoss pgtype.Numeric
		roi        pgtype.Numeric
		util       pgtype.Numeric
	)

	err := row.Scan(&l.ID, &l.PanelID, &ledgerDate, &opening, &closing,
		&points, &deposits, &withdrawn, &bonus, &topUp,
		&profitLoss, &roi, &util, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	l.LedgerDate = ledgerDate.Time
	l.OpeningBalance = numericToDecimal(opening)
	l.ClosingBalance = numericToDecimal(closing)
	l.PointsBalance = numericToDecimal(points)
	l.TotalDeposits = numericToDecimal(deposits)
	l.TotalWithdrawals = numericToDecimal(withdrawn)
	l.BonusPoints = numericToDecimal(bonus)
	l.TopUp = numericToDecimal(topUp)
	l.ProfitLoss = numericToDecimal(profitLoss)
	l.ROI = numericToDecimal(roi)
	l.Utilization = numericToDecimal(util)

	return &l, nil
}

func (r *PanelLedgerRepository) get(ctx context.Context, q querier, panelID string, date time.Time, forUpdate bool) (*domain.PanelLedger, error) {
	query := `SELECT ` + panelLedgerColumns + `
		FROM panel_daily_ledger
		WHERE panel_id = $1 AND ledger_date = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	row, err := scanPanelLedger(q.QueryRow(ctx, query, panelID, timeToPgDate(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}

		return nil, err
	}

	return row, nil
}

// Get retrieves one panel row by panel and date.
func (r *PanelLedgerRepository) Get(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error) {
	return r.get(ctx, r.pool, panelID, date, false)
}

// GetForUpdate retrieves one panel row with a FOR UPDATE lock.
func (r *PanelLedgerRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, panelID string, date time.Time) (*domain.PanelLedger, error) {
	return r.get(ctx, txQuerier(tx), panelID, date, true)
}

// Create inserts a new panel row.
func (r *PanelLedgerRepository) Create(ctx context.Context, tx usecase.Transaction, row *domain.PanelLedger) error {
	query := `
		INSERT INTO panel_daily_ledger (` + panelLedgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		row.ID,
		row.PanelID,
		timeToPgDate(row.LedgerDate),
		decimalToNumeric(row.OpeningBalance),
		decimalToNumeric(row.ClosingBalance),
		decimalToNumeric(row.PointsBalance),
		decimalToNumeric(row.TotalDeposits),
		decimalToNumeric(row.TotalWithdrawals),
		decimalToNumeric(row.BonusPoints),
		decimalToNumeric(row.TopUp),
		decimalToNumeric(row.ProfitLoss),
		decimalToNumeric(row.ROI),
		decimalToNumeric(row.Utilization),
		row.Status,
		timeToPgTimestamptz(row.CreatedAt),
		timeToPgTimestamptz(row.UpdatedAt),
	)

	return err
}

// Update persists the balances, counters and derived metrics of a row.
func (r *PanelLedgerRepository) Update(ctx context.Context, tx usecase.Transaction, row *domain.PanelLedger) error {
	query := `
		UPDATE panel_daily_ledger SET
			opening_balance = $1, closing_balance = $2, points_balance = $3,
			total_deposits = $4, total_withdrawals = $5, bonus_points = $6,
			top_up = $7, profit_loss = $8, roi = $9, utilization = $10,
			status = $11, updated_at = $12
		WHERE id = $13
	`

	tag, err := txQuerier(tx).Exec(ctx, query,
		decimalToNumeric(row.OpeningBalance),
		decimalToNumeric(row.ClosingBalance),
		decimalToNumeric(row.PointsBalance),
		decimalToNumeric(row.TotalDeposits),
		decimalToNumeric(row.TotalWithdrawals),
		decimalToNumeric(row.BonusPoints),
		decimalToNumeric(row.TopUp),
		decimalToNumeric(row.ProfitLoss),
		decimalToNumeric(row.ROI),
		decimalToNumeric(row.Utilization),
		row.Status,
		timeToPgTimestamptz(row.UpdatedAt),
		row.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotFound
	}

	return nil
}

// SetStatus flips a row between OPEN and CLOSED outside any unit of work.
func (r *PanelLedgerRepository) SetStatus(ctx context.Context, panelID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error {
	query := `
		UPDATE panel_daily_ledger SET status = $1, updated_at = $2
		WHERE panel_id = $3 AND ledger_date = $4
	`

	tag, err := r.pool.Exec(ctx, query, status, timeToPgTimestamptz(updatedAt), panelID, timeToPgDate(date))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotFound
	}

	return nil
}

// List retrieves panel rows matching the filter, newest dates first.
func (r *PanelLedgerRepository) List(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.PanelLedger, error) {
	query := `SELECT ` + panelLedgerColumns + ` FROM panel_daily_ledger WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND panel_id = $%d", argPos)
		args = append(args, filter.EntityID)
		argPos++
	}

	if filter.DateFrom != nil {
		query += fmt.Sprintf(" AND ledger_date >= $%d", argPos)
		args = append(args, timeToPgDate(*filter.DateFrom))
		argPos++
	}

	if filter.DateTo != nil {
		query += fmt.Sprintf(" AND ledger_date <= $%d", argPos)
		args = append(args, timeToPgDate(*filter.DateTo))
		argPos++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	query += " ORDER BY ledger_date DESC, panel_id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	return r.queryRows(ctx, query, args...)
}

// ListByDate retrieves every row for a date, optionally filtered by status.
func (r *PanelLedgerRepository) ListByDate(ctx context.Context, date time.Time, status domain.LedgerStatus) ([]*domain.PanelLedger, error) {
	query := `SELECT ` + panelLedgerColumns + ` FROM panel_daily_ledger WHERE ledger_date = $1`
	args := []any{timeToPgDate(date)}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}

	query += ` ORDER BY panel_id`

	return r.queryRows(ctx, query, args...)
}

func (r *PanelLedgerRepository) queryRows(ctx context.Context, query string, args ...any) ([]*domain.PanelLedger, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PanelLedger

	for rows.Next() {
		row, err := scanPanelLedger(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, row)
	}

	return out, rows.Err()
}

// CloseAllForDate marks every still-open row for a date CLOSED.
func (r *PanelLedgerRepository) CloseAllForDate(ctx context.Context, tx usecase.Transaction, date time.Time, closedAt time.Time) (int64, error) {
	query := `
		UPDATE panel_daily_ledger SET status = 'CLOSED', updated_at = $1
		WHERE ledger_date = $2 AND status = 'OPEN'
	`

	tag, err := txQuerier(tx).Exec(ctx, query, timeToPgTimestamptz(closedAt), timeToPgDate(date))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// CreateForDate inserts a fresh row for every active panel that does not
// have one yet. Existing rows are untouched.
func (r *PanelLedgerRepository) CreateForDate(ctx context.Context, tx usecase.Transaction, date time.Time, createdAt time.Time) (int64, error) {
	query := `
		INSERT INTO panel_daily_ledger (id, panel_id, ledger_date, status, created_at, updated_at)
		SELECT gen_random_uuid()::text, p.id, $1, 'OPEN', $2, $2
		FROM panels p
		WHERE p.active
		ON CONFLICT (panel_id, ledger_date) DO NOTHING
	`

	tag, err := txQuerier(tx).Exec(ctx, query, timeToPgDate(date), timeToPgTimestamptz(createdAt))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// CarryForward copies each closed fromDate row's closing balances into
// the matching toDate row's opening position.
func (r *PanelLedgerRepository) CarryForward(ctx context.Context, tx usecase.Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE panel_daily_ledger AS today
		SET opening_balance = prev.closing_balance,
		    closing_balance = prev.closing_balance,
		    points_balance = prev.points_balance,
		    updated_at = $1
		FROM panel_daily_ledger AS prev
		WHERE today.ledger_date = $2
		  AND prev.ledger_date = $3
		  AND prev.panel_id = today.panel_id
		  AND prev.status = 'CLOSED'
		  AND today.status = 'OPEN'
	`

	tag, err := txQuerier(tx).Exec(ctx, query, timeToPgTimestamptz(updatedAt), timeToPgDate(toDate), timeToPgDate(fromDate))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ResetCounters zeroes the daily counters and derived metrics for a
// date's open rows and rewinds their balances to the opening position,
// so the row starts the day balanced even when transactions already
// landed on it before the rollover ran. Locked rows are untouched.
func (r *PanelLedgerRepository) ResetCounters(ctx context.Context, tx usecase.Transaction, date time.Time, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE panel_daily_ledger SET
			total_deposits = 0, total_withdrawals = 0, bonus_points = 0,
			top_up = 0, profit_loss = 0, roi = 0, utilization = 0,
			closing_balance = opening_balance, points_balance = opening_balance,
			updated_at = $1
		WHERE ledger_date = $2 AND status = 'OPEN'
	`

	tag, err := txQuerier(tx).Exec(ctx, query, timeToPgTimestamptz(updatedAt), timeToPgDate(date))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// CountForDate counts rows for a date.
func (r *PanelLedgerRepository) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM panel_daily_ledger WHERE ledger_date = $1`,
		timeToPgDate(date)).Scan(&n)

	return n, err
}

// CountClosedForDate counts CLOSED rows for a date.
func (r *PanelLedgerRepository) CountClosedForDate(ctx context.Context, date time.Time) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM panel_daily_ledger WHERE ledger_date = $1 AND status = 'CLOSED'`,
		timeToPgDate(date)).Scan(&n)

	return n, err
}
