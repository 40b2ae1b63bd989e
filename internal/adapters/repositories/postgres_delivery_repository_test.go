package repositories

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/db"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when TEST_DATABASE_URL is set.
func TestPostgresDeliveryRepository(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, conn))

	seed := filepath.Join(t.TempDir(), "deliveries.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[{
		"delivery_id": "test-d-1",
		"donor": "Bakery",
		"pickup_coordinates": [10.21, 36.87],
		"recipient": "Shelter",
		"delivery_coordinates": [10.23, 36.89],
		"vehicle_type": "motorbike",
		"transporter": "Sami"
	}]`), 0o600))

	n, err := SeedFromJSON(ctx, conn, seed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	repo := NewPostgresDeliveryRepository(conn, logger.NewTest())
	d, err := repo.GetDelivery(ctx, "test-d-1")
	require.NoError(t, err)

	assert.Equal(t, "Bakery", d.Pickup.Label)
	assert.Equal(t, domain.Coordinates{Lon: 10.23, Lat: 36.89}, d.Dropoff.Position.Coordinates)
	assert.Equal(t, domain.Motorcycle, d.Vehicle)
	assert.Equal(t, "Sami", d.Transporter)

	_, err = repo.GetDelivery(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrDeliveryNotFound)
}

func TestSeedFromJSONRejectsUnknownCoordinates(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "deliveries.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[{"delivery_id": "d", "pickup_coordinates": [0, 0], "delivery_coordinates": [10.2, 36.8]}]`), 0o600))

	_, err := SeedFromJSON(context.Background(), nil, seed)
	assert.ErrorContains(t, err, "must be non-zero")
}
