package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exchops/panelledger/internal/domain"
)

// EntityRepository implements usecase.EntityRepository over the panel
// and bank account master tables.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// GetPanel retrieves a panel master row.
func (r *EntityRepository) GetPanel(ctx context.Context, id string) (*domain.Panel, error) {
	var panel domain.Panel

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, active, created_at FROM panels WHERE id = $1`,
		id).Scan(&panel.ID, &panel.Name, &panel.Active, &panel.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPanelNotFound
		}

		return nil, err
	}

	return &panel, nil
}

// GetBankAccount retrieves a bank account master row.
func (r *EntityRepository) GetBankAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	var account domain.BankAccount

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, active, created_at FROM bank_accounts WHERE id = $1`,
		id).Scan(&account.ID, &account.Name, &account.Active, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBankAccountNotFound
		}

		return nil, err
	}

	return &account, nil
}

// CountActivePanels counts panels still taking traffic.
func (r *EntityRepository) CountActivePanels(ctx context.Context) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM panels WHERE active`).Scan(&n)

	return n, err
}

// CountActiveBankAccounts counts bank accounts still taking traffic.
func (r *EntityRepository) CountActiveBankAccounts(ctx context.Context) (int64, error) {
	var n int64

	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bank_accounts WHERE active`).Scan(&n)

	return n, err
}
