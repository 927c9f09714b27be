package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"smart_toll/internal/repository"

	"github.com/lib/pq"
)

type pgLicensePlateRepository struct {
	db *sql.DB
}

func NewPgLicensePlateRepository(db *sql.DB) repository.LicensePlateRepository {
	return &pgLicensePlateRepository{db: db}
}

func (r *pgLicensePlateRepository) Add(ctx context.Context, email string, plateKey string) error {
	query := `INSERT INTO license_plates (email, plate_key, created_at)
	           VALUES ($1, $2, CURRENT_TIMESTAMP)
	           ON CONFLICT (email, plate_key) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, email, plateKey); err != nil {
		return fmt.Errorf("LicensePlateRepository.Add: %w", err)
	}
	return nil
}

// FindOwnerEmail returns the earliest registrant of the key.
func (r *pgLicensePlateRepository) FindOwnerEmail(ctx context.Context, plateKey string) (string, error) {
	query := `SELECT email FROM license_plates WHERE plate_key = $1 ORDER BY created_at ASC LIMIT 1`
	var email string
	err := r.db.QueryRowContext(ctx, query, plateKey).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("LicensePlateRepository.FindOwnerEmail: %w", err)
	}
	return email, nil
}

func (r *pgLicensePlateRepository) ListByEmail(ctx context.Context, email string) ([]string, error) {
	query := `SELECT COALESCE(array_agg(plate_key ORDER BY created_at), '{}') FROM license_plates WHERE email = $1`
	var keys pq.StringArray
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&keys); err != nil {
		return nil, fmt.Errorf("LicensePlateRepository.ListByEmail: %w", err)
	}
	return []string(keys), nil
}
