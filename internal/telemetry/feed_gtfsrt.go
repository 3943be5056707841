package telemetry

import (
	"context"
	"io"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"bus-locator/internal/model"
)

// GtfsRtSource picks one vehicle out of a GTFS-RT VehiclePositions feed.
type GtfsRtSource struct {
	httpFeed
	vehicleRef string
}

func NewGtfsRtSource(url, vehicleRef string, timeout time.Duration) *GtfsRtSource {
	return &GtfsRtSource{
		httpFeed:   newHTTPFeed("gtfs-rt", url, timeout),
		vehicleRef: vehicleRef,
	}
}

func (s *GtfsRtSource) Fetch(ctx context.Context) (model.LocationSample, error) {
	resp, err := s.get(ctx)
	if err != nil {
		return model.LocationSample{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.LocationSample{}, err
	}
	var feed gtfs.FeedMessage
	if err := proto.Unmarshal(body, &feed); err != nil {
		return model.LocationSample{}, err
	}
	for _, ent := range feed.Entity {
		if ent == nil || ent.Vehicle == nil {
			continue
		}
		vp := ent.Vehicle
		if vp.Vehicle == nil || vp.Position == nil {
			continue
		}
		if vp.Vehicle.GetId() != s.vehicleRef && vp.Vehicle.GetLabel() != s.vehicleRef {
			continue
		}
		lat := vp.Position.Latitude
		lon := vp.Position.Longitude
		if lat == nil || lon == nil {
			continue
		}
		return model.LocationSample{Latitude: float64(*lat), Longitude: float64(*lon)}, nil
	}
	return model.LocationSample{}, ErrNoPosition
}
