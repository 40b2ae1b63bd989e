package routing

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/httpclient"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "http://router.project-osrm.org"

var ErrNoRoute = errors.New("no route returned")

// OSRMRouteProvider implements RouteProvider against the OSRM route service.
//
// The provider is safe for concurrent use.
type OSRMRouteProvider struct {
	client  *httpclient.Client
	baseURL string
}

func NewOSRMRouteProvider(baseURL string, httpClient *http.Client, timeout time.Duration) *OSRMRouteProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OSRMRouteProvider{
		client:  httpclient.New(httpClient, timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry struct {
		Type        string       `json:"type"`
		Coordinates [][2]float64 `json:"coordinates"`
	} `json:"geometry"`
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

// Route requests the shortest path with full GeoJSON geometry.
func (o *OSRMRouteProvider) Route(
	ctx context.Context,
	profile string,
	from domain.Coordinates,
	to domain.Coordinates,
) (ports.RouteResult, error) {
	if profile == "" {
		profile = domain.Car.RoutingProfile()
	}

	u := fmt.Sprintf("%s/route/v1/%s/%s;%s?%s",
		o.baseURL,
		url.PathEscape(profile),
		formatCoords(from),
		formatCoords(to),
		url.Values{"overview": {"full"}, "geometries": {"geojson"}}.Encode(),
	)

	var resp osrmResponse
	if err := o.client.GetJSON(ctx, u, &resp); err != nil {
		return ports.RouteResult{}, fmt.Errorf("osrm route: %w", err)
	}

	if resp.Code != "" && resp.Code != "Ok" {
		return ports.RouteResult{}, fmt.Errorf("osrm route: code %s: %s", resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return ports.RouteResult{}, fmt.Errorf("osrm route: %w", ErrNoRoute)
	}

	r := resp.Routes[0]
	geometry := make([]domain.Coordinates, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		geometry = append(geometry, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return ports.RouteResult{
		Geometry:        geometry,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}, nil
}

func formatCoords(c domain.Coordinates) string {
	return fmt.Sprintf("%g,%g", c.Lon, c.Lat)
}
