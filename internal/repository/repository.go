package repository

import (
	"context"
	"errors"
	"smart_toll/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type BalanceRepository interface {
	Create(ctx context.Context, email string, amount float64) error
	FindByEmail(ctx context.Context, email string) (*domain.Balance, error)
	// Increment applies a signed delta in a single statement and returns the resulting amount.
	Increment(ctx context.Context, email string, delta float64) (float64, error)
}

type LicensePlateRepository interface {
	// Add is a set insert: adding a key the owner already has is a no-op.
	Add(ctx context.Context, email string, plateKey string) error
	FindOwnerEmail(ctx context.Context, plateKey string) (string, error)
	ListByEmail(ctx context.Context, email string) ([]string, error)
}

type StationRepository interface {
	Upsert(ctx context.Context, station *domain.Station) (*domain.Station, error)
	FindByID(ctx context.Context, id string) (*domain.Station, error)
}

type AuthorizationEventRepository interface {
	Create(ctx context.Context, outcome *domain.AuthorizationOutcome) error
}
