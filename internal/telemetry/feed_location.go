package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"bus-locator/internal/model"
)

// LocationPath is appended to the telemetry base URL.
const LocationPath = "get_location"

// LocationSource reads `{"lat": .., "lon": ..}` from <base>/get_location.
type LocationSource struct {
	httpFeed
}

func NewLocationSource(baseURL string, timeout time.Duration) (*LocationSource, error) {
	u, err := url.JoinPath(baseURL, LocationPath)
	if err != nil {
		return nil, fmt.Errorf("telemetry: base url: %w", err)
	}
	return &LocationSource{httpFeed: newHTTPFeed("location", u, timeout)}, nil
}

type locationPayload struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (s *LocationSource) Fetch(ctx context.Context) (model.LocationSample, error) {
	resp, err := s.get(ctx)
	if err != nil {
		return model.LocationSample{}, err
	}
	defer resp.Body.Close()

	var p locationPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return model.LocationSample{}, fmt.Errorf("location decode: %w", err)
	}
	if p.Lat == nil || p.Lon == nil {
		return model.LocationSample{}, ErrNoPosition
	}
	return model.LocationSample{Latitude: *p.Lat, Longitude: *p.Lon}, nil
}
