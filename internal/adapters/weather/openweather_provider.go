package weather

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/httpclient"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.openweathermap.org"

// OpenWeatherProvider implements WeatherProvider with the OpenWeatherMap current weather API.
type OpenWeatherProvider struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

func NewOpenWeatherProvider(baseURL, apiKey string, httpClient *http.Client, timeout time.Duration) (*OpenWeatherProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openweather api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherProvider{
		client:  httpclient.New(httpClient, timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}, nil
}

type currentWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentCondition returns the primary condition, e.g. "Rain" or "Mist".
func (p *OpenWeatherProvider) CurrentCondition(ctx context.Context, at domain.Coordinates) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("appid", p.apiKey)
	q.Set("units", "metric")

	var resp currentWeatherResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/data/2.5/weather?"+q.Encode(), &resp); err != nil {
		return "", fmt.Errorf("current weather: %w", err)
	}
	if len(resp.Weather) == 0 || resp.Weather[0].Main == "" {
		return "", errors.New("current weather: no condition in response")
	}
	return resp.Weather[0].Main, nil
}
