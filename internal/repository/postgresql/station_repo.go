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

type pgStationRepository struct {
	db *sql.DB
}

func NewPgStationRepository(db *sql.DB) repository.StationRepository {
	return &pgStationRepository{db: db}
}

func (r *pgStationRepository) Upsert(ctx context.Context, station *domain.Station) (*domain.Station, error) {
	query := `INSERT INTO stations (tid, name, toll_amount, lat, lon, created_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	           ON CONFLICT (tid) DO UPDATE SET name = EXCLUDED.name, toll_amount = EXCLUDED.toll_amount,
	               lat = EXCLUDED.lat, lon = EXCLUDED.lon
	           RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, station.ID, station.Name, station.TollAmount, station.Latitude, station.Longitude).Scan(&station.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("StationRepository.Upsert: %w", err)
	}
	station.CreatedAt = station.CreatedAt.In(time.UTC)
	return station, nil
}

func (r *pgStationRepository) FindByID(ctx context.Context, id string) (*domain.Station, error) {
	station := &domain.Station{}
	query := `SELECT tid, name, toll_amount, lat, lon, created_at FROM stations WHERE tid = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&station.ID, &station.Name, &station.TollAmount,
		&station.Latitude, &station.Longitude, &station.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("StationRepository.FindByID: %w", err)
	}
	station.CreatedAt = station.CreatedAt.In(time.UTC)
	return station, nil
}
