// Package routes resolves route keys to the static route metadata table.
package routes

import (
	"sort"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"bus-locator/internal/model"
)

// Normalize trims and lower-cases a route key.
func Normalize(routeKey string) string {
	return strings.ToLower(strings.TrimSpace(routeKey))
}

// Resolve returns the descriptor for routeKey, or the fallback descriptor when
// the key is empty or unknown. The result is a private copy and may be
// modified by the caller.
func Resolve(routeKey string) model.RouteDescriptor {
	key := Normalize(routeKey)
	if key == "" {
		return Fallback()
	}
	d, ok := table[key]
	if !ok {
		return Fallback()
	}
	out, err := clone(d)
	if err != nil {
		log.Error().Err(err).Str("route", key).Msg("Failed to copy route descriptor")
		return Fallback()
	}
	return out
}

// Known reports whether routeKey is present in the table.
func Known(routeKey string) bool {
	_, ok := table[Normalize(routeKey)]
	return ok
}

// Keys lists the known route keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fallback returns a copy of the placeholder descriptor.
func Fallback() model.RouteDescriptor {
	return model.RouteDescriptor{
		ID:              fallback.ID,
		Title:           fallback.Title,
		Description:     fallback.Description,
		Stops:           append([]string(nil), fallback.Stops...),
		Schedule:        append([]model.ScheduleEntry(nil), fallback.Schedule...),
		Occupancy:       fallback.Occupancy,
		Center:          fallback.Center,
		StopCoordinates: append([]model.GeoPoint(nil), fallback.StopCoordinates...),
	}
}

func clone(d model.RouteDescriptor) (model.RouteDescriptor, error) {
	var out model.RouteDescriptor
	err := copier.CopyWithOption(&out, d, copier.Option{DeepCopy: true})
	return out, err
}
