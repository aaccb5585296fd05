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

const bankLedgerColumns = `id, bank_account_id, ledger_date, opening_balance, closing_balance,
	total_deposits, total_withdrawals, total_charges, profit_loss, roi,
	status, created_at, updated_at`

// BankLedgerRepository implements usecase.BankLedgerRepository.
type BankLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewBankLedgerRepository creates a new BankLedgerRepository.
func NewBankLedgerRepository(pool *pgxpool.Pool) *BankLedgerRepository {
	return &BankLedgerRepository{pool: pool}
}

func scanBankLedger(row rowScanner) (*domain.BankLedger, error) {
	var (
		l          domain.BankLedger
		ledgerDate pgtype.Date
		opening    pgtype.Numeric
		closing    pgtype.Numeric
		deposits   pgtype.Numeric
		withdrawn  pgtype.Numeric
		charges    pgtype.Numeric
		profitLoss pgtype.Numeric
		roi        pgtype.Numeric
	)

	err := row.Scan(&l.ID, &l.BankAccountID, &ledgerDate, &opening, &closing,
		&deposits, &withdrawn, &charges, &profitLoss, &roi,
		&l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}

	l.LedgerDate = ledgerDate.Time
	l.OpeningBalance = numericToDecimal(opening)
	l.ClosingBalance = numericToDecimal(closing)
	l.TotalDeposits = numericToDecimal(deposits)
	l.TotalWithdrawals = numericToDecimal(withdrawn)
	l.TotalCharges = numericToDecimal(charges)
	l.ProfitLoss = numericToDecimal(profitLoss)
	l.ROI = numericToDecimal(roi)

	return &l, nil
}

func (r *BankLedgerRepository) get(ctx context.Context, q querier, bankAccountID string, date time.Time, forUpdate bool) (*domain.BankLedger, error) {
	query := `SELECT ` + bankLedgerColumns + `
		FROM bank_daily_ledger
		WHERE bank_account_id = $1 AND ledger_date = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	row, err := scanBankLedger(q.QueryRow(ctx, query, bankAccountID, timeToPgDate(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}

		return nil, err
	}

	return row, nil
}

// Get retrieves one bank row by account and date.
func (r *BankLedgerRepository) Get(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	return r.get(ctx, r.pool, bankAccountID, date, false)
}

// GetForUpdate retrieves one bank row with a FOR UPDATE lock.
func (r *BankLedgerRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, bankAccountID string, date time.Time) (*domain.BankLedger, error) {
	return r.get(ctx, txQuerier(tx), bankAccountID, date, true)
}

// Create inserts a new bank row.
func (r *BankLedgerRepository) Create(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error {
	query := `
		INSERT INTO bank_daily_ledger (` + bankLedgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		row.ID,
		row.BankAccountID,
		timeToPgDate(row.LedgerDate),
		decimalToNumeric(row.OpeningBalance),
		decimalToNumeric(row.ClosingBalance),
		decimalToNumeric(row.TotalDeposits),
		decimalToNumeric(row.TotalWithdrawals),
		decimalToNumeric(row.TotalCharges),
		decimalToNumeric(row.ProfitLoss),
		decimalToNumeric(row.ROI),
		row.Status,
		timeToPgTimestamptz(row.CreatedAt),
		timeToPgTimestamptz(row.UpdatedAt),
	)

	return err
}

// Update persists the balances, counters and derived metrics of a row.
func (r *BankLedgerRepository) Update(ctx context.Context, tx usecase.Transaction, row *domain.BankLedger) error {
	query := `
		UPDATE bank_daily_ledger SET
			opening_balance = $1, closing_balance = $2, total_deposits = $3,
			total_withdrawals = $4, total_charges = $5, profit_loss = $6,
			roi = $7, status = $8, updated_at = $9
		WHERE id = $10
	`

	tag, err := txQuerier(tx).Exec(ctx, query,
		decimalToNumeric(row.OpeningBalance),
		decimalToNumeric(row.ClosingBalance),
		decimalToNumeric(row.TotalDeposits),
		decimalToNumeric(row.TotalWithdrawals),
		decimalToNumeric(row.TotalCharges),
		decimalToNumeric(row.ProfitLoss),
		decimalToNumeric(row.ROI),
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
func (r *BankLedgerRepository) SetStatus(ctx context.Context, bankAccountID string, date time.Time, status domain.LedgerStatus, updatedAt time.Time) error {
	query := `
		UPDATE bank_daily_ledger SET status = $1, updated_at = $2
		WHERE bank_account_id = $3 AND ledger_date = $4
	`

	tag, err := r.pool.Exec(ctx, query, status, timeToPgTimestamptz(updatedAt), bankAccountID, timeToPgDate(date))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotFound
	}

	return nil
}

// List retrieves bank rows matching the filter, newest dates first.
func (r *BankLedgerRepository) List(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.BankLedger, error) {
	query := `SELECT ` + bankLedgerColumns + ` FROM bank_daily_ledger WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND bank_account_id = $%d", argPos)
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

	query += " ORDER BY ledger_date DESC, bank_account_id"

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
func (r *BankLedgerRepository) ListByDate(ctx context.Context, date time.Time, status domain.LedgerStatus) ([]*domain.BankLedger, error) {
	query := `SELECT ` + bankLedgerColumns + ` FROM bank_daily_ledger WHERE ledger_date = $1`
	args := []any{timeToPgDate(date)}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}

	query += ` ORDER BY bank_account_id`

	return r.queryRows(ctx, query, args...)
}

func (r *BankLedgerRepository) queryRows(ctx context.Context, query string, args ...any) ([]*domain.BankLedger, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.BankLedger

	for rows.Next() {
		row, err := scanBankLedger(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, row)
	}

	return out, rows.Err()
}

// CloseAllForDate marks every still-open row for a date CLOSED.
func (r *BankLedgerRepository) CloseAllForDate(ctx context.Context, tx usecase.Transaction, date time.Time, closedAt time.Time) (int64, error) {
	query := `
		UPDATE bank_daily_ledger SET status = 'CLOSED', updated_at = $1
		WHERE ledger_date = $2 AND status = 'OPEN'
	`

	tag, err := txQuerier(tx).Exec(ctx, query, timeToPgTimestamptz(closedAt), timeToPgDate(date))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// CreateForDate inserts a fresh row for every active bank account that
// does not have one yet.
func (r *BankLedgerRepository) CreateForDate(ctx context.Context, tx usecase.Transaction, date time.Time, createdAt time.Time) (int64, error) {
	query := `
		INSERT INTO bank_daily_ledger (id, bank_account_id, ledger_date, status, created_at, updated_at)
		SELECT gen_random_uuid()::text, b.id, $1, 'OPEN', $2, $2
		FROM bank_accounts b
		WHERE b.active
		ON CONFLICT (bank_account_id, ledger_date) DO NOTHING
	`

	tag, err := txQuerier(tx).Exec(ctx, query, timeToPgDate(date), timeToPgTimestamptz(createdAt))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// CarryForward copies each closed fromDate row's closing balance into
// the matching toDate row's opening position.
func (r *BankLedgerRepository) CarryForward(ctx context.Context, tx usecase.Transaction, fromDate, toDate time.Time, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE bank_daily_ledger AS today
		SET opening_balance = prev.closing_balance,
		    closing_balance = prev.closing_balance,
		    updated_at = $1
		FROM bank_daily_ledger AS prev
		WHERE today.ledger_date = $2
		  AND prev.ledger_date = $3
		  AND prev.bank_account_id = today.bank_account_id
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
// date's open rows and rewinds closing_balance to opening_balance, so
// the row starts the day balanced even when transactions already landed
// on it before the rollover ran. Locked rows are untouched.
func (r *BankLedgerRepository) ResetCounters(ctx context.Context, tx usecase.Transaction, date time.Time, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE bank_daily_ledger SET
			total_deposits = 0, total_withdrawals = 0, total_charges = 0,
			profit_loss = 0, roi = 0,
			closing_balance = opening_balance,
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
func (r *BankLedgerRepository) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM bank_daily_ledger WHERE ledger_date = $1`,
		timeToPgDate(date)).Scan(&n)

	return n, err
}

// CountClosedForDate counts CLOSED rows for a date.
func (r *BankLedgerRepository) CountClosedForDate(ctx context.Context, date time.Time) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM bank_daily_ledger WHERE ledger_date = $1 AND status = 'CLOSED'`,
		timeToPgDate(date)).Scan(&n)

	return n, err
}
