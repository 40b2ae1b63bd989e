package prediction

import (
	"context"
	"delivery-eta-service/internal/platform/httpclient"
	"delivery-eta-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultURL = "http://localhost:5000/predict_duration"

// HTTPDurationModel implements DurationModel against the prediction service.
// One PredictDuration call is exactly one HTTP request.
type HTTPDurationModel struct {
	client *httpclient.Client
	url    string
}

func NewHTTPDurationModel(url string, httpClient *http.Client, timeout time.Duration) *HTTPDurationModel {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDurationModel{
		client: httpclient.New(httpClient, timeout),
		url:    url,
	}
}

type predictRequest struct {
	Distance     float64 `json:"distance"`
	OSRMDuration float64 `json:"osrmDuration"`
	Hour         int     `json:"hour"`
	Weather      string  `json:"weather"`
	VehicleType  string  `json:"vehicleType"`
}

type predictResponse struct {
	PredictedDuration *float64 `json:"predictedDuration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (m *HTTPDurationModel) PredictDuration(ctx context.Context, req ports.PredictionRequest) (float64, error) {
	body := predictRequest{
		Distance:     req.DistanceKm,
		OSRMDuration: req.BaselineDurationSec,
		Hour:         req.Hour,
		Weather:      string(req.Weather),
		VehicleType:  req.Vehicle.String(),
	}

	var resp predictResponse
	if err := m.client.PostJSON(ctx, m.url, body, &resp); err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			var e errorResponse
			if json.Unmarshal([]byte(se.Body), &e) == nil && e.Error != "" {
				return 0, fmt.Errorf("predict duration: status %d: %s", se.Code, e.Error)
			}
		}
		return 0, fmt.Errorf("predict duration: %w", err)
	}

	if resp.PredictedDuration == nil {
		return 0, errors.New("predict duration: missing predictedDuration")
	}
	return *resp.PredictedDuration, nil
}
