package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exchops/panelledger/internal/domain"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	var dataJSON []byte

	if log.Data != nil {
		var err error

		dataJSON, err = json.Marshal(log.Data)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_log (
			id, operation, entity_type, entity_id, data, result, user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.Operation,
		log.EntityType,
		log.EntityID,
		dataJSON,
		log.Result,
		log.ActorID,
		timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// List retrieves audit logs with filtering
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, operation, entity_type, entity_id, data, result, user_id, created_at
		FROM audit_log
		WHERE 1=1
	`
	args := []any{}
	argPos := 1

	if filter.ActorID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argPos)
		args = append(args, filter.ActorID)
		argPos++
	}

	if filter.Operation != "" {
		query += fmt.Sprintf(" AND operation = $%d", argPos)
		args = append(args, filter.Operation)
		argPos++
	}

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

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argPos)
		args = append(args, *filter.StartDate)
		argPos++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argPos)
		args = append(args, *filter.EndDate)
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

	var out []*domain.AuditLog

	for rows.Next() {
		var (
			entry    domain.AuditLog
			dataJSON []byte
		)

		err := rows.Scan(&entry.ID, &entry.Operation, &entry.EntityType, &entry.EntityID,
			&dataJSON, &entry.Result, &entry.ActorID, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}

		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &entry.Data); err != nil {
				return nil, err
			}
		}

		out = append(out, &entry)
	}

	return out, rows.Err()
}
