package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"smart_toll/internal/domain"
	"smart_toll/internal/repository"
)

type pgAuthorizationEventRepository struct {
	db *sql.DB
}

func NewPgAuthorizationEventRepository(db *sql.DB) repository.AuthorizationEventRepository {
	return &pgAuthorizationEventRepository{db: db}
}

func (r *pgAuthorizationEventRepository) Create(ctx context.Context, o *domain.AuthorizationOutcome) error {
	query := `INSERT INTO authorization_events
		(correlation_id, plate_key, email, station_id, decision, distance_km, toll_amount,
		 previous_balance, new_balance, latitude, longitude, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		o.CorrelationID, o.PlateKey, o.Email, o.StationID, o.Decision, o.DistanceKm, o.TollAmount,
		o.PreviousBalance, o.NewBalance, o.Reading.Latitude, o.Reading.Longitude, o.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("AuthorizationEventRepository.Create: %w", err)
	}
	return nil
}
