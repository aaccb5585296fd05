package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

// PlayerRepository implements usecase.PlayerRepository.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

func (r *PlayerRepository) get(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Player, error) {
	query := `SELECT id, name, balance, updated_at FROM players WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		player  domain.Player
		balance pgtype.Numeric
	)

	err := q.QueryRow(ctx, query, id).Scan(&player.ID, &player.Name, &balance, &player.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}

		return nil, err
	}

	player.Balance = numericToDecimal(balance)

	return &player, nil
}

// GetByID retrieves a player by ID.
func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	return r.get(ctx, r.pool, id, false)
}

// GetByIDForUpdate retrieves a player with a FOR UPDATE lock.
func (r *PlayerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Player, error) {
	return r.get(ctx, txQuerier(tx), id, true)
}

// UpdateBalance persists the player's tracked balance.
func (r *PlayerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx,
		`UPDATE players SET balance = $1, updated_at = $2 WHERE id = $3`,
		decimalToNumeric(balance), timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}

	return nil
}

// CreateTransaction appends one player transaction.
func (r *PlayerRepository) CreateTransaction(ctx context.Context, tx usecase.Transaction, ptx *domain.PlayerTransaction) error {
	query := `
		INSERT INTO player_transactions (
			id, player_id, type, amount, balance_before, balance_after,
			reference_id, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := txQuerier(tx).Exec(ctx, query,
		ptx.ID,
		ptx.PlayerID,
		ptx.Type,
		decimalToNumeric(ptx.Amount),
		decimalToNumeric(ptx.BalanceBefore),
		decimalToNumeric(ptx.BalanceAfter),
		ptx.ReferenceID,
		ptx.Description,
		timeToPgTimestamptz(ptx.CreatedAt),
	)

	return err
}
