package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

// TransactionLogRepository implements usecase.TransactionLogRepository.
// The table is append-only; there is no update or delete path.
type TransactionLogRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionLogRepository creates a new TransactionLogRepository.
func NewTransactionLogRepository(pool *pgxpool.Pool) *TransactionLogRepository {
	return &TransactionLogRepository{pool: pool}
}

// Create appends one log entry inside the caller's unit of work.
func (r *TransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionLogEntry) error {
	query := `
		INSERT INTO transaction_log (
			id, transaction_date, ledger_date, entity_type, entity_id,
			transaction_type, amount, reference_type, reference_id,
			related_entity_type, related_entity_id, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		entry.ID,
		timeToPgTimestamptz(entry.TransactionDate),
		timeToPgDate(entry.LedgerDate),
		entry.EntityType,
		entry.EntityID,
		entry.Direction,
		decimalToNumeric(entry.Amount),
		entry.ReferenceType,
		entry.ReferenceID,
		entry.RelatedEntityType,
		entry.RelatedEntityID,
		entry.Description,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// List retrieves log entries matching the filter, newest first.
func (r *TransactionLogRepository) List(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.TransactionLogEntry, error) {
	query := `
		SELECT id, transaction_date, ledger_date, entity_type, entity_id,
		       transaction_type, amount, reference_type, reference_id,
		       related_entity_type, related_entity_id, description, created_at
		FROM transaction_log
		WHERE 1=1
	`
	args := []any{}
	argPos := 1

	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", argPos)
		args = append(args, filter.EntityType)
		argPos++
	}

	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND entity_id = $%d", argPos)
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

	if filter.ReferenceType != "" {
		query += fmt.Sprintf(" AND reference_type = $%d", argPos)
		args = append(args, filter.ReferenceType)
		argPos++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TransactionLogEntry

	for rows.Next() {
		var (
			entry      domain.TransactionLogEntry
			ledgerDate pgtype.Date
			amount     pgtype.Numeric
		)

		err := rows.Scan(&entry.ID, &entry.TransactionDate, &ledgerDate, &entry.EntityType, &entry.EntityID,
			&entry.Direction, &amount, &entry.ReferenceType, &entry.ReferenceID,
			&entry.RelatedEntityType, &entry.RelatedEntityID, &entry.Description, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}

		entry.LedgerDate = ledgerDate.Time
		entry.Amount = numericToDecimal(amount)
		out = append(out, &entry)
	}

	return out, rows.Err()
}

// ExistsByReference reports whether a UTR was already recorded for a
// reference type. Used for duplicate detection before a unit of work.
func (r *TransactionLogRepository) ExistsByReference(ctx context.Context, referenceType domain.ReferenceType, referenceID string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transaction_log WHERE reference_type = $1 AND reference_id = $2)`,
		referenceType, referenceID).Scan(&exists)

	return exists, err
}
