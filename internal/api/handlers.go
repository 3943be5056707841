package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bus-locator/internal/model"
	"bus-locator/internal/routes"
	"bus-locator/internal/screen"
)

// RouteResponse is a route descriptor with the display hints the host UI
// needs.
type RouteResponse struct {
	model.RouteDescriptor
	Known          bool   `json:"known"`
	OccupancyColor string `json:"occupancyColor"`
	Delayed        []bool `json:"delayed"`
}

func newRouteResponse(key string) RouteResponse {
	d := routes.Resolve(key)
	delayed := make([]bool, len(d.Schedule))
	for i, e := range d.Schedule {
		delayed[i] = e.Delayed()
	}
	return RouteResponse{
		RouteDescriptor: d,
		Known:           routes.Known(key),
		OccupancyColor:  d.Occupancy.Color(),
		Delayed:         delayed,
	}
}

// listRoutes handles GET /api/routes
func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"routes": routes.Keys()})
}

// getRoute handles GET /api/routes/{routeKey}
// Unknown keys answer 200 with the fallback descriptor.
func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newRouteResponse(chi.URLParam(r, "routeKey")))
}

type mountRequest struct {
	RouteID string `json:"routeId"`
}

// mountScreen handles POST /api/screens
func (s *Server) mountScreen(w http.ResponseWriter, r *http.Request) {
	var req mountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.screens.Mount(req.RouteID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c.View())
}

// listScreens handles GET /api/screens
func (s *Server) listScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.screens.List())
}

// getScreen handles GET /api/screens/{screenID}
func (s *Server) getScreen(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

// toggleScreen handles POST /api/screens/{screenID}/toggle
func (s *Server) toggleScreen(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if _, err := c.Toggle(); err != nil {
		if errors.Is(err, screen.ErrClosed) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}

// unmountScreen handles DELETE /api/screens/{screenID}
func (s *Server) unmountScreen(w http.ResponseWriter, r *http.Request) {
	if err := s.screens.Unmount(chi.URLParam(r, "screenID")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*screen.Controller, bool) {
	c, err := s.screens.Get(chi.URLParam(r, "screenID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return c, true
}
