package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"smart_toll/internal/domain"
	"smart_toll/internal/repository"
	"time"
)

type pgBalanceRepository struct {
	db *sql.DB
}

func NewPgBalanceRepository(db *sql.DB) repository.BalanceRepository {
	return &pgBalanceRepository{db: db}
}

func (r *pgBalanceRepository) Create(ctx context.Context, email string, amount float64) error {
	query := `INSERT INTO balances (email, amount, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)`
	if _, err := r.db.ExecContext(ctx, query, email, amount); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: balance for '%s'", repository.ErrDuplicateEntry, email)
		}
		return fmt.Errorf("BalanceRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBalanceRepository) FindByEmail(ctx context.Context, email string) (*domain.Balance, error) {
	balance := &domain.Balance{}
	query := `SELECT email, amount, updated_at FROM balances WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&balance.Email, &balance.Amount, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("BalanceRepository.FindByEmail: %w", err)
	}
	balance.UpdatedAt = balance.UpdatedAt.In(time.UTC)
	return balance, nil
}

func (r *pgBalanceRepository) Increment(ctx context.Context, email string, delta float64) (float64, error) {
	query := `UPDATE balances SET amount = amount + $1, updated_at = CURRENT_TIMESTAMP
	           WHERE email = $2
	           RETURNING amount`
	var amount float64
	err := r.db.QueryRowContext(ctx, query, delta, email).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("BalanceRepository.Increment: %w", err)
	}
	return amount, nil
}
