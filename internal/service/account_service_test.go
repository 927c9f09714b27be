package service

import (
	"context"
	"testing"

	"smart_toll/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountFixture(ocr *stubOCR) (*AccountService, *memStore) {
	store := newMemStore()
	ledger := NewLedgerService(memBalances{store})
	recognizer := NewPlateRecognizer(&stubCamera{}, ocr)
	svc := NewAccountService(memAccounts{store}, memBalances{store}, memPlates{store}, memStations{store}, ledger, recognizer)
	return svc, store
}

func TestRegisterCreatesZeroBalance(t *testing.T) {
	svc, store := newAccountFixture(&stubOCR{})

	account, err := svc.Register(context.Background(), domain.CreateAccountDTO{Email: " Owner@Example.com ", Name: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", account.Email)
	assert.False(t, account.Phone.Valid)

	amount, err := svc.GetBalance(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Zero(t, amount)
	assert.Contains(t, store.balances, "owner@example.com")
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newAccountFixture(&stubOCR{})
	dto := domain.CreateAccountDTO{Email: "owner@example.com", Name: "Owner"}
	_, err := svc.Register(context.Background(), dto)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), dto)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestAddFunds(t *testing.T) {
	svc, store := newAccountFixture(&stubOCR{})
	store.balances["owner@example.com"] = 7

	amount, err := svc.AddFunds(context.Background(), "owner@example.com", 5.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, amount)

	_, err = svc.AddFunds(context.Background(), "ghost@example.com", 1)
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
}

func TestRegisterPlateAndList(t *testing.T) {
	svc, store := newAccountFixture(&stubOCR{tokens: []string{"7ABC 123", "California"}})

	key, err := svc.RegisterPlate(context.Background(), "owner@example.com", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, testPlate, key)

	// registering the same plate again keeps a single entry
	_, err = svc.RegisterPlate(context.Background(), "owner@example.com", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, store.plates["owner@example.com"], 1)

	plates, err := svc.ListPlates(context.Background(), "owner@example.com")
	require.NoError(t, err)
	require.Len(t, plates, 1)
	assert.Equal(t, "California", plates[0].State)
	assert.Equal(t, "7ABC123", plates[0].PlateNumber)
	assert.Equal(t, "https://example.com/images/7ABC123.jpg", plates[0].ImageURL)
}

func TestRegisterPlateUnreadable(t *testing.T) {
	svc, store := newAccountFixture(&stubOCR{tokens: []string{"blurry"}})
	_, err := svc.RegisterPlate(context.Background(), "owner@example.com", []byte{1})
	assert.ErrorIs(t, err, domain.ErrRecognition)
	assert.Empty(t, store.plates)
}

func TestStations(t *testing.T) {
	svc, _ := newAccountFixture(&stubOCR{})
	toll, lat, lon := 4.5, 40.0, -74.0
	_, err := svc.SaveStation(context.Background(), domain.StationDTO{ID: "nj1", Name: "Turnpike", TollAmount: &toll, Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)

	st, err := svc.GetStation(context.Background(), "nj1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, st.TollAmount)
	assert.Equal(t, "Turnpike", st.Name.String)

	_, err = svc.GetStation(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrStationNotFound)
}
