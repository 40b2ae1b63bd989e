package prediction

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/ports"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRequest = ports.PredictionRequest{
	DistanceKm:          2.5,
	BaselineDurationSec: 800,
	Hour:                17,
	Weather:             domain.WeatherRain,
	Vehicle:             domain.Motorcycle,
}

func TestPredictDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 2.5, got["distance"])
		assert.Equal(t, 800.0, got["osrmDuration"])
		assert.Equal(t, 17.0, got["hour"])
		assert.Equal(t, "Rain", got["weather"])
		assert.Equal(t, "Motorcycle", got["vehicleType"])

		_, _ = w.Write([]byte(`{"predictedDuration": 912.4}`))
	}))
	defer srv.Close()

	v, err := NewHTTPDurationModel(srv.URL, nil, time.Second).PredictDuration(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, 912.4, v)
}

func TestPredictDurationMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"duration": 912.4}`))
	}))
	defer srv.Close()

	_, err := NewHTTPDurationModel(srv.URL, nil, time.Second).PredictDuration(context.Background(), sampleRequest)
	assert.ErrorContains(t, err, "missing predictedDuration")
}

func TestPredictDurationErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Hour must be between 0 and 23"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPDurationModel(srv.URL, nil, time.Second).PredictDuration(context.Background(), sampleRequest)
	assert.ErrorContains(t, err, "status 400: Hour must be between 0 and 23")
}

func TestPredictDurationTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPDurationModel(srv.URL, nil, 50*time.Millisecond).PredictDuration(context.Background(), sampleRequest)
	assert.Error(t, err)
}
