package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"smart_toll/internal/domain"
	"smart_toll/internal/repository"
	"time"

	"github.com/lib/pq"
)

type pgAccountRepository struct {
	db *sql.DB
}

func NewPgAccountRepository(db *sql.DB) repository.AccountRepository {
	return &pgAccountRepository{db: db}
}

func (r *pgAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `INSERT INTO accounts (email, name, phone, address, created_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
	           RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, account.Email, account.Name, account.Phone, account.Address).Scan(&account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email '%s' already registered", repository.ErrDuplicateEntry, account.Email)
		}
		return nil, fmt.Errorf("AccountRepository.Create: %w", err)
	}
	account.CreatedAt = account.CreatedAt.In(time.UTC)
	return account, nil
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account := &domain.Account{}
	query := `SELECT email, name, phone, address, created_at FROM accounts WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&account.Email, &account.Name, &account.Phone, &account.Address, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("AccountRepository.FindByEmail: %w", err)
	}
	account.CreatedAt = account.CreatedAt.In(time.UTC)
	return account, nil
}

// isUniqueViolation understands both lib/pq and pgx error values.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	var coded interface{ SQLState() string }
	if errors.As(err, &coded) {
		return coded.SQLState() == "23505"
	}
	return false
}
