package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"bus-locator/internal/model"
)

// SiriJsonSource picks one vehicle out of a SIRI VehicleMonitoring JSON feed.
type SiriJsonSource struct {
	httpFeed
	vehicleRef string
}

func NewSiriJsonSource(url, vehicleRef string, timeout time.Duration) *SiriJsonSource {
	return &SiriJsonSource{
		httpFeed:   newHTTPFeed("siri json", url, timeout),
		vehicleRef: vehicleRef,
	}
}

func (s *SiriJsonSource) Fetch(ctx context.Context) (model.LocationSample, error) {
	resp, err := s.get(ctx)
	if err != nil {
		return model.LocationSample{}, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.LocationSample{}, err
	}

	// Siri?.ServiceDelivery.VehicleMonitoringDelivery[].VehicleActivity[]
	var root map[string]any
	if err := json.Unmarshal(b, &root); err != nil {
		return model.LocationSample{}, err
	}
	if siri, ok := root["Siri"].(map[string]any); ok && siri != nil {
		root = siri
	}
	sd, _ := root["ServiceDelivery"].(map[string]any)
	vmdArr, _ := sd["VehicleMonitoringDelivery"].([]any)
	for _, vmdAny := range vmdArr {
		vmd, _ := vmdAny.(map[string]any)
		vaArr, _ := vmd["VehicleActivity"].([]any)
		for _, vaAny := range vaArr {
			va, _ := vaAny.(map[string]any)
			mvj, _ := va["MonitoredVehicleJourney"].(map[string]any)
			if mvj == nil {
				continue
			}
			id := stringFrom(mvj["VehicleRef"])
			if id == "" {
				id = stringFromNested(mvj, "FramedVehicleJourneyRef", "DatedVehicleJourneyRef")
			}
			if id != s.vehicleRef {
				continue
			}
			lat, okLat := floatFromNested(mvj, "VehicleLocation", "Latitude")
			lon, okLon := floatFromNested(mvj, "VehicleLocation", "Longitude")
			if !okLat || !okLon {
				continue
			}
			return model.LocationSample{Latitude: lat, Longitude: lon}, nil
		}
	}
	return model.LocationSample{}, ErrNoPosition
}

func stringFrom(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func stringFromNested(m map[string]any, k1, k2 string) string {
	m1, _ := m[k1].(map[string]any)
	return stringFrom(m1[k2])
}

func floatFromNested(m map[string]any, k1, k2 string) (float64, bool) {
	m1, _ := m[k1].(map[string]any)
	switch v := m1[k2].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
