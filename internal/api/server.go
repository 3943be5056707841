// Package api is the HTTP surface used by the host UI: route metadata,
// screen lifecycle and the websocket endpoint map pages attach to.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"bus-locator/internal/screen"
)

// SurfaceServer attaches a websocket request to an open surface.
type SurfaceServer interface {
	ServeSurface(w http.ResponseWriter, r *http.Request, id string)
}

type Options struct {
	AllowedOrigins []string
	StaticDir      string
}

type Server struct {
	screens  *screen.Manager
	surfaces SurfaceServer
}

// NewRouter builds the HTTP handler.
func NewRouter(screens *screen.Manager, surfaces SurfaceServer, opts Options) http.Handler {
	s := &Server{screens: screens, surfaces: surfaces}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withLogging)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/routes", s.listRoutes)
	r.Get("/api/routes/{routeKey}", s.getRoute)

	r.Get("/api/screens", s.listScreens)
	r.Post("/api/screens", s.mountScreen)
	r.Get("/api/screens/{screenID}", s.getScreen)
	r.Post("/api/screens/{screenID}/toggle", s.toggleScreen)
	r.Delete("/api/screens/{screenID}", s.unmountScreen)

	r.Get("/surface/{surfaceID}", func(w http.ResponseWriter, r *http.Request) {
		s.surfaces.ServeSurface(w, r, chi.URLParam(r, "surfaceID"))
	})

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}
	return r
}

func withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		h.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
