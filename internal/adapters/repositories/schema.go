package repositories

import (
	"context"
	"database/sql"
	"delivery-eta-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// InitSchema creates the deliveries table in Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		delivery_id TEXT PRIMARY KEY,
		pickup_label TEXT NOT NULL DEFAULT '',
		pickup_lon DOUBLE PRECISION NOT NULL DEFAULT 0,
		pickup_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		dropoff_label TEXT NOT NULL DEFAULT '',
		dropoff_lon DOUBLE PRECISION NOT NULL DEFAULT 0,
		dropoff_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		vehicle_type TEXT NOT NULL DEFAULT 'car',
		transporter_name TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_transporter
	ON deliveries(transporter_name);
	`

	statements := []string{
		createDeliveriesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// DeliverySeed mirrors the delivery record: coordinates are [lon, lat].
type DeliverySeed struct {
	DeliveryID  string     `json:"delivery_id"`
	Donor       string     `json:"donor"`
	Pickup      [2]float64 `json:"pickup_coordinates"`
	Recipient   string     `json:"recipient"`
	Dropoff     [2]float64 `json:"delivery_coordinates"`
	VehicleType string     `json:"vehicle_type"`
	Transporter string     `json:"transporter"`
}

func (s DeliverySeed) validate(i int) error {
	if strings.TrimSpace(s.DeliveryID) == "" {
		return fmt.Errorf("item at index %d: delivery_id cannot be empty", i+1)
	}
	pickup := domain.Coordinates{Lon: s.Pickup[0], Lat: s.Pickup[1]}
	dropoff := domain.Coordinates{Lon: s.Dropoff[0], Lat: s.Dropoff[1]}
	if !pickup.Valid() || !dropoff.Valid() {
		return fmt.Errorf("item %q: pickup and delivery coordinates must be non-zero", s.DeliveryID)
	}
	return nil
}

// SeedFromJSON upserts delivery records from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed deliveries: read %q: %w", jsonPath, err)
	}

	var data []DeliverySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed deliveries: parse json: %w", err)
	}

	for i, item := range data {
		if err := item.validate(i); err != nil {
			return 0, fmt.Errorf("seed deliveries: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed deliveries: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO deliveries (
		delivery_id,
		pickup_label, pickup_lon, pickup_lat,
		dropoff_label, dropoff_lon, dropoff_lat,
		vehicle_type,
		transporter_name
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (delivery_id) DO UPDATE SET
		pickup_label = EXCLUDED.pickup_label,
		pickup_lon = EXCLUDED.pickup_lon,
		pickup_lat = EXCLUDED.pickup_lat,
		dropoff_label = EXCLUDED.dropoff_label,
		dropoff_lon = EXCLUDED.dropoff_lon,
		dropoff_lat = EXCLUDED.dropoff_lat,
		vehicle_type = EXCLUDED.vehicle_type,
		transporter_name = EXCLUDED.transporter_name,
		updated_at = now();
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed deliveries: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range data {
		vehicle := domain.ParseVehicleProfile(d.VehicleType)
		if _, err := stmt.ExecContext(ctx,
			strings.TrimSpace(d.DeliveryID),
			d.Donor, d.Pickup[0], d.Pickup[1],
			d.Recipient, d.Dropoff[0], d.Dropoff[1],
			strings.ToLower(vehicle.String()),
			d.Transporter,
		); err != nil {
			return 0, fmt.Errorf("seed deliveries: insert delivery_id=%s: %w", d.DeliveryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed deliveries: commit tx: %w", err)
	}

	return len(data), nil
}
