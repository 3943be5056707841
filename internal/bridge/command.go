// Package bridge relays commands from the host into isolated map surfaces.
//
// A surface lives behind an Engine and can only be reached by one-way
// commands. The engine reports back a single ready signal per surface once
// it has processed Initialize.
package bridge

import "bus-locator/internal/model"

// DefaultZoom is the zoom level a surface starts at.
const DefaultZoom = 13

type Kind string

const (
	KindInitialize          Kind = "initialize"
	KindUpsertStopMarkers   Kind = "upsertStopMarkers"
	KindUpdateVehicleMarker Kind = "updateVehicleMarker"
	KindRecenter            Kind = "recenter"
	KindResize              Kind = "resize"
	KindInvalidateSize      Kind = "invalidateSize"
)

// Command is one host to surface instruction. Only the fields relevant to
// Kind are set.
type Command struct {
	Kind    Kind               `json:"type"`
	Route   string             `json:"route,omitempty"`
	Title   string             `json:"title,omitempty"`
	Center  *model.GeoPoint    `json:"center,omitempty"`
	Zoom    int                `json:"zoom,omitempty"`
	Markers []model.StopMarker `json:"markers,omitempty"`
	Point   *model.GeoPoint    `json:"point,omitempty"`
}

func Initialize(d model.RouteDescriptor) Command {
	center := d.Center
	return Command{Kind: KindInitialize, Route: d.ID, Title: d.Title, Center: &center, Zoom: DefaultZoom}
}

func UpsertStopMarkers(d model.RouteDescriptor) Command {
	return Command{Kind: KindUpsertStopMarkers, Markers: d.StopMarkers()}
}

func UpdateVehicleMarker(p model.GeoPoint) Command {
	return Command{Kind: KindUpdateVehicleMarker, Point: &p}
}

func Recenter(p model.GeoPoint) Command {
	return Command{Kind: KindRecenter, Point: &p}
}

func Resize() Command { return Command{Kind: KindResize} }

func InvalidateSize() Command { return Command{Kind: KindInvalidateSize} }

// droppable reports whether a command may be discarded when the surface is
// not ready yet.
func (c Command) droppable() bool {
	return c.Kind == KindResize || c.Kind == KindInvalidateSize
}
