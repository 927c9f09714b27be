package service

import (
	"context"
	"errors"
	"sync"

	"smart_toll/internal/camera"
	"smart_toll/internal/domain"
	"smart_toll/internal/repository"
)

type memStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	balances map[string]float64
	plates   map[string][]string // email -> keys in insertion order
	stations map[string]*domain.Station
	events   []*domain.AuthorizationOutcome

	increments int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*domain.Account{},
		balances: map[string]float64{},
		plates:   map[string][]string{},
		stations: map[string]*domain.Station{},
	}
}

type memAccounts struct{ *memStore }
type memBalances struct{ *memStore }
type memPlates struct{ *memStore }
type memStations struct{ *memStore }
type memEvents struct{ *memStore }

func (m memAccounts) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.Email]; ok {
		return nil, repository.ErrDuplicateEntry
	}
	m.accounts[a.Email] = a
	return a, nil
}

func (m memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m memBalances) Create(_ context.Context, email string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[email]; ok {
		return repository.ErrDuplicateEntry
	}
	m.balances[email] = amount
	return nil
}

func (m memBalances) FindByEmail(_ context.Context, email string) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, ok := m.balances[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Balance{Email: email, Amount: amount}, nil
}

func (m memBalances) Increment(_ context.Context, email string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, ok := m.balances[email]
	if !ok {
		return 0, repository.ErrNotFound
	}
	m.increments++
	m.balances[email] = amount + delta
	return amount + delta, nil
}

func (m memPlates) Add(_ context.Context, email, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.plates[email] {
		if k == key {
			return nil
		}
	}
	m.plates[email] = append(m.plates[email], key)
	return nil
}

func (m memPlates) FindOwnerEmail(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, keys := range m.plates {
		for _, k := range keys {
			if k == key {
				return email, nil
			}
		}
	}
	return "", repository.ErrNotFound
}

func (m memPlates) ListByEmail(_ context.Context, email string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.plates[email]...), nil
}

func (m memStations) Upsert(_ context.Context, s *domain.Station) (*domain.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[s.ID] = s
	return s, nil
}

func (m memStations) FindByID(_ context.Context, id string) (*domain.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m memEvents) Create(_ context.Context, o *domain.AuthorizationOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, o)
	return nil
}

func (m *memStore) balance(email string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[email]
}

// stubPositions answers every request with a fixed reading or error.
type stubPositions struct {
	mu       sync.Mutex
	reading  domain.GeoReading
	err      error
	requests []domain.PositionRequest
}

func (s *stubPositions) RequestPosition(_ context.Context, req domain.PositionRequest) (domain.GeoReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.reading, s.err
}

func (s *stubPositions) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

type stubCamera struct {
	frame *camera.Frame
	err   error
}

func (c *stubCamera) Capture(context.Context) (*camera.Frame, error) {
	return c.frame, c.err
}

type stubOCR struct {
	tokens []string
	err    error
	seen   []byte
}

func (o *stubOCR) RecognizeText(_ context.Context, image []byte) ([]domain.OCRToken, error) {
	o.seen = append([]byte(nil), image...)
	if o.err != nil {
		return nil, o.err
	}
	out := make([]domain.OCRToken, 0, len(o.tokens))
	for _, t := range o.tokens {
		out = append(out, domain.OCRToken{Text: t, Confidence: 99})
	}
	return out, nil
}

type recordingPublisher struct {
	outcomes []*domain.AuthorizationOutcome
	err      error
}

func (p *recordingPublisher) PublishOutcome(_ context.Context, o *domain.AuthorizationOutcome) error {
	p.outcomes = append(p.outcomes, o)
	return p.err
}

var errBoom = errors.New("boom")
