package repositories

import (
	"context"
	"database/sql"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the DeliveryRepository port.
type PostgresDeliveryRepository struct {
	DB  *sql.DB
	log *logger.Logger
}

func NewPostgresDeliveryRepository(db *sql.DB, log *logger.Logger) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{DB: db, log: log.WithComponent("delivery_repository")}
}

// Return the waypoints, vehicle and transporter of a delivery.
func (r *PostgresDeliveryRepository) GetDelivery(ctx context.Context, id string) (_ *domain.Delivery, err error) {
	defer obs.Time(ctx, r.log, "deliveries.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres delivery repository: DB is nil")
	}

	query := `
	SELECT
		delivery_id,
		pickup_label, pickup_lon, pickup_lat,
		dropoff_label, dropoff_lon, dropoff_lat,
		vehicle_type,
		transporter_name
	FROM deliveries
	WHERE delivery_id = $1;
	`

	var (
		d       domain.Delivery
		pickup  domain.Coordinates
		dropoff domain.Coordinates
		vehicle string
	)
	err = r.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.Pickup.Label, &pickup.Lon, &pickup.Lat,
		&d.Dropoff.Label, &dropoff.Lon, &dropoff.Lat,
		&vehicle,
		&d.Transporter,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get delivery %q: %w", id, ports.ErrDeliveryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery %q: %w", id, err)
	}

	d.Pickup.Position.Coordinates = pickup
	d.Dropoff.Position.Coordinates = dropoff
	d.Vehicle = domain.ParseVehicleProfile(vehicle)

	return &d, nil
}
