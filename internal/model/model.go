package model

import "strings"

// GeoPoint is a WGS84 position. Values are passed through as received.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// LocationSample is one decoded vehicle position from the telemetry endpoint.
type LocationSample struct {
	Longitude float64 `json:"lon"`
	Latitude  float64 `json:"lat"`
}

func (s LocationSample) Point() GeoPoint {
	return GeoPoint{Longitude: s.Longitude, Latitude: s.Latitude}
}

type Occupancy string

const (
	OccupancyLow     Occupancy = "Low"
	OccupancyMedium  Occupancy = "Medium"
	OccupancyHigh    Occupancy = "High"
	OccupancyUnknown Occupancy = "Unknown"
)

// Color is the indicator colour the host UI paints next to the occupancy level.
func (o Occupancy) Color() string {
	switch o {
	case OccupancyHigh:
		return "#EF4444"
	case OccupancyMedium:
		return "#F59E0B"
	case OccupancyLow:
		return "#10B981"
	default:
		return "#94A3B8"
	}
}

type ScheduleEntry struct {
	Time   string `json:"time"`
	Status string `json:"status"`
}

// Delayed reports whether the status text announces a delay.
func (e ScheduleEntry) Delayed() bool {
	return strings.Contains(e.Status, "Delayed")
}

// RouteDescriptor is the static metadata of a bus route. StopCoordinates
// matches Stops by index.
type RouteDescriptor struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Stops           []string        `json:"stops"`
	Schedule        []ScheduleEntry `json:"schedule"`
	Occupancy       Occupancy       `json:"occupancy"`
	Center          GeoPoint        `json:"center"`
	StopCoordinates []GeoPoint      `json:"stopCoordinates"`
}

// StopMarker is a labelled stop position drawn on a map surface.
type StopMarker struct {
	Label string   `json:"label"`
	Point GeoPoint `json:"point"`
}

// StopMarkers pairs every stop with its coordinate. Stops without a
// coordinate are skipped.
func (d RouteDescriptor) StopMarkers() []StopMarker {
	n := len(d.Stops)
	if len(d.StopCoordinates) < n {
		n = len(d.StopCoordinates)
	}
	markers := make([]StopMarker, 0, n)
	for i := 0; i < n; i++ {
		markers = append(markers, StopMarker{Label: d.Stops[i], Point: d.StopCoordinates[i]})
	}
	return markers
}
