package service

import (
	"context"
	"errors"
	"fmt"

	"smart_toll/internal/domain"
	"smart_toll/internal/repository"

	log "github.com/sirupsen/logrus"
)

// LedgerService is the only writer of balances. Every change is a signed increment applied
// by the store in one statement, so concurrent debits against one owner never lose updates.
type LedgerService struct {
	balances repository.BalanceRepository
}

func NewLedgerService(balances repository.BalanceRepository) *LedgerService {
	return &LedgerService{balances: balances}
}

// Commit debits tollAmount from the owner and returns the resulting balance.
func (l *LedgerService) Commit(ctx context.Context, email string, tollAmount float64) (float64, error) {
	amount, err := l.balances.Increment(ctx, email, -tollAmount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", domain.ErrBalanceNotFound, email)
		}
		return 0, fmt.Errorf("commit toll for %s: %w", email, err)
	}
	log.Printf("Ledger: debited %.2f from %s, balance now %.2f", tollAmount, email, amount)
	return amount, nil
}

// Credit adds funds (negative values are allowed and act as a correction).
func (l *LedgerService) Credit(ctx context.Context, email string, funds float64) (float64, error) {
	amount, err := l.balances.Increment(ctx, email, funds)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", domain.ErrBalanceNotFound, email)
		}
		return 0, fmt.Errorf("credit %s: %w", email, err)
	}
	return amount, nil
}
