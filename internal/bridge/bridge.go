package bridge

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bus-locator/internal/model"
)

// Surface is the handle of one live map surface.
type Surface struct {
	ID   string
	Role string

	mu      sync.Mutex
	ready   bool
	closed  bool
	pending []Command
	onReady func(*Surface)
}

// Ready reports whether the engine has signalled ready for the surface.
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Closed reports whether the surface has been destroyed.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Bridge owns the command channels of all open surfaces. Every surface has
// its own queue and lock, so commands never cross between surfaces.
type Bridge struct {
	engine Engine

	mu       sync.Mutex
	surfaces map[string]*Surface
}

func New(engine Engine) *Bridge {
	return &Bridge{engine: engine, surfaces: make(map[string]*Surface)}
}

// Open creates a surface for route d, sends Initialize and queues the stop
// markers behind it. onReady, if set, runs on its own goroutine after the
// queued commands have been flushed.
func (b *Bridge) Open(role string, d model.RouteDescriptor, onReady func(*Surface)) *Surface {
	s := &Surface{
		ID:      uuid.NewString(),
		Role:    role,
		pending: []Command{UpsertStopMarkers(d)},
		onReady: onReady,
	}
	b.engine.OnReady(s.ID, func() { b.markReady(s) })
	b.engine.Open(s.ID)
	b.engine.Send(s.ID, Initialize(d))

	b.mu.Lock()
	b.surfaces[s.ID] = s
	b.mu.Unlock()

	log.Info().Str("surface", s.ID).Str("role", role).Str("route", d.ID).Msg("Surface opened")
	return s
}

func (b *Bridge) markReady(s *Surface) {
	s.mu.Lock()
	if s.ready || s.closed {
		s.mu.Unlock()
		return
	}
	s.ready = true
	for _, cmd := range s.pending {
		b.engine.Send(s.ID, cmd)
	}
	s.pending = nil
	fn := s.onReady
	s.mu.Unlock()

	log.Info().Str("surface", s.ID).Str("role", s.Role).Msg("Surface ready")
	if fn != nil {
		go fn(s)
	}
}

// Send delivers cmd to s, or queues it until s is ready. Resize and
// InvalidateSize are dropped while s is not ready. Initialize and
// UpsertStopMarkers are only issued by Open and are ignored here.
func (b *Bridge) Send(s *Surface, cmd Command) {
	if s == nil {
		return
	}
	if cmd.Kind == KindInitialize || cmd.Kind == KindUpsertStopMarkers {
		log.Warn().Str("surface", s.ID).Str("command", string(cmd.Kind)).Msg("Command is only sent on open")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.sendLocked(s, cmd)
}

// SendPosition sends UpdateVehicleMarker(p) followed by Recenter(p) with no
// other command for s in between.
func (b *Bridge) SendPosition(s *Surface, p model.GeoPoint) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.sendLocked(s, UpdateVehicleMarker(p))
	b.sendLocked(s, Recenter(p))
}

// SendResize sends Resize followed by InvalidateSize.
func (b *Bridge) SendResize(s *Surface) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.sendLocked(s, Resize())
	b.sendLocked(s, InvalidateSize())
}

func (b *Bridge) sendLocked(s *Surface, cmd Command) {
	if s.closed {
		return
	}
	if s.ready {
		b.engine.Send(s.ID, cmd)
		return
	}
	if cmd.droppable() {
		log.Debug().Str("surface", s.ID).Str("command", string(cmd.Kind)).Msg("Dropped command before ready")
		return
	}
	s.pending = append(s.pending, cmd)
}

// Destroy closes s. Later sends to s are no-ops.
func (b *Bridge) Destroy(s *Surface) {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	b.engine.Close(s.ID)

	b.mu.Lock()
	delete(b.surfaces, s.ID)
	b.mu.Unlock()

	log.Info().Str("surface", s.ID).Str("role", s.Role).Msg("Surface destroyed")
}

// Surface looks up an open surface by id.
func (b *Bridge) Surface(id string) (*Surface, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfaces[id]
	return s, ok
}

// Live returns the number of open surfaces.
func (b *Bridge) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.surfaces)
}
