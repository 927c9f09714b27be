package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"smart_toll/internal/domain"
	"smart_toll/internal/repository"

	"gopkg.in/guregu/null.v4"
)

var ErrAccountExists = errors.New("email already registered")
var ErrAccountNotFound = errors.New("account not found")

// AccountService covers registration and the owner-facing reads around the toll pipeline.
type AccountService struct {
	accountRepo repository.AccountRepository
	balanceRepo repository.BalanceRepository
	plateRepo   repository.LicensePlateRepository
	stationRepo repository.StationRepository
	ledger      *LedgerService
	recognizer  *PlateRecognizer
	imageBase   string
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	balanceRepo repository.BalanceRepository,
	plateRepo repository.LicensePlateRepository,
	stationRepo repository.StationRepository,
	ledger *LedgerService,
	recognizer *PlateRecognizer,
) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		plateRepo:   plateRepo,
		stationRepo: stationRepo,
		ledger:      ledger,
		recognizer:  recognizer,
		imageBase:   "https://example.com/images/",
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account with a zero balance.
func (s *AccountService) Register(ctx context.Context, dto domain.CreateAccountDTO) (*domain.Account, error) {
	email := NormalizeEmail(dto.Email)
	if _, err := s.accountRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check account: %w", err)
	}

	account := &domain.Account{
		Email:   email,
		Name:    strings.TrimSpace(dto.Name),
		Phone:   null.NewString(strings.TrimSpace(dto.Phone), strings.TrimSpace(dto.Phone) != ""),
		Address: null.NewString(dto.Address, dto.Address != ""),
	}
	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrAccountExists
		}
		return nil, err
	}
	if err := s.balanceRepo.Create(ctx, email, 0); err != nil && !errors.Is(err, repository.ErrDuplicateEntry) {
		return nil, fmt.Errorf("create balance: %w", err)
	}
	return created, nil
}

func (s *AccountService) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	return account, err
}

func (s *AccountService) GetBalance(ctx context.Context, email string) (float64, error) {
	balance, err := s.balanceRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, domain.ErrBalanceNotFound
		}
		return 0, err
	}
	return balance.Amount, nil
}

func (s *AccountService) AddFunds(ctx context.Context, email string, funds float64) (float64, error) {
	return s.ledger.Credit(ctx, NormalizeEmail(email), funds)
}

// RegisterPlate reads the plate from an uploaded photo and adds it to the owner's set.
func (s *AccountService) RegisterPlate(ctx context.Context, email string, image []byte) (string, error) {
	key, err := s.recognizer.RecognizeImage(ctx, image)
	if err != nil {
		return "", err
	}
	if err := s.plateRepo.Add(ctx, NormalizeEmail(email), key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *AccountService) ListPlates(ctx context.Context, email string) ([]domain.RegisteredPlate, error) {
	keys, err := s.plateRepo.ListByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	plates := make([]domain.RegisteredPlate, 0, len(keys))
	for _, key := range keys {
		state, number, ok := SplitPlateKey(key)
		if !ok {
			continue
		}
		plates = append(plates, domain.RegisteredPlate{
			State:       state,
			PlateNumber: number,
			ImageURL:    s.imageBase + url.PathEscape(number) + ".jpg",
		})
	}
	return plates, nil
}

func (s *AccountService) SaveStation(ctx context.Context, dto domain.StationDTO) (*domain.Station, error) {
	return s.stationRepo.Upsert(ctx, &domain.Station{
		ID:         dto.ID,
		Name:       null.NewString(dto.Name, dto.Name != ""),
		TollAmount: *dto.TollAmount,
		Latitude:   *dto.Latitude,
		Longitude:  *dto.Longitude,
	})
}

func (s *AccountService) GetStation(ctx context.Context, id string) (*domain.Station, error) {
	station, err := s.stationRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrStationNotFound
	}
	return station, err
}
