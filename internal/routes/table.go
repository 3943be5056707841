package routes

import "bus-locator/internal/model"

var table = map[string]model.RouteDescriptor{
	"vv1": {
		ID:          "vv1",
		Title:       "VV1 Bus Route",
		Description: "Main Bus Station to Benz Circle via MG Road",
		Stops:       []string{"Main Bus Station", "Governorpet", "Raghavaiah Park", "Benz Circle"},
		Schedule: []model.ScheduleEntry{
			{Time: "06:00 AM", Status: "On Time"},
			{Time: "07:30 AM", Status: "On Time"},
			{Time: "09:00 AM", Status: "Delayed by 5m"},
			{Time: "10:30 AM", Status: "On Time"},
		},
		Occupancy: model.OccupancyMedium,
		Center:    model.GeoPoint{Longitude: 78.4867, Latitude: 17.3850},
		StopCoordinates: []model.GeoPoint{
			{Longitude: 78.4867, Latitude: 17.3850},
			{Longitude: 78.4900, Latitude: 17.3880},
			{Longitude: 78.4930, Latitude: 17.3900},
			{Longitude: 78.4960, Latitude: 17.3920},
		},
	},
}

var fallback = model.RouteDescriptor{
	Title:           "Bus Route Information",
	Description:     "Route information not available",
	Stops:           []string{"Stop information not available"},
	Schedule:        []model.ScheduleEntry{{Time: "Schedule not available", Status: "Unknown"}},
	Occupancy:       model.OccupancyUnknown,
	Center:          model.GeoPoint{Longitude: 78.4867, Latitude: 17.3850},
	StopCoordinates: []model.GeoPoint{{Longitude: 78.4867, Latitude: 17.3850}},
}
