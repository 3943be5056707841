// Package wsengine is a bridge.Engine that reaches each map surface over its
// own websocket. The page hosting a surface connects to /surface/{id},
// receives JSON commands and answers {"type":"ready"} once initialized.
package wsengine

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"bus-locator/internal/bridge"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type surface struct {
	id   string
	wake chan struct{}
	done chan struct{}

	mu        sync.Mutex
	initial   [][]byte
	queue     []frame
	conn      *websocket.Conn
	attached  bool
	onReady   func()
	readySeen bool
}

type frame struct {
	data    []byte
	initial bool
}

// Engine multiplexes surfaces by id. Commands sent before a page attaches
// are queued and written in order once it does.
type Engine struct {
	mu       sync.Mutex
	surfaces map[string]*surface
}

func New() *Engine {
	return &Engine{surfaces: make(map[string]*surface)}
}

func (e *Engine) get(id string) *surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfaces[id]
}

func (e *Engine) Open(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.surfaces[id]; ok {
		return
	}
	e.surfaces[id] = &surface{
		id:   id,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (e *Engine) OnReady(id string, fn func()) {
	e.mu.Lock()
	if _, ok := e.surfaces[id]; !ok {
		e.surfaces[id] = &surface{id: id, wake: make(chan struct{}, 1), done: make(chan struct{})}
	}
	s := e.surfaces[id]
	e.mu.Unlock()

	s.mu.Lock()
	s.onReady = fn
	s.mu.Unlock()
}

func (e *Engine) Send(id string, cmd bridge.Command) {
	s := e.get(id)
	if s == nil {
		return
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		log.Error().Err(err).Str("surface", id).Msg("Failed to encode command")
		return
	}
	initial := cmd.Kind == bridge.KindInitialize || cmd.Kind == bridge.KindUpsertStopMarkers
	s.mu.Lock()
	if initial {
		s.initial = append(s.initial, data)
	}
	s.queue = append(s.queue, frame{data: data, initial: initial})
	s.mu.Unlock()
	s.signal()
}

func (e *Engine) Close(id string) {
	e.mu.Lock()
	s, ok := e.surfaces[id]
	delete(e.surfaces, id)
	e.mu.Unlock()
	if !ok {
		return
	}
	close(s.done)
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.queue = nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Attached reports whether a page is connected to surface id.
func (e *Engine) Attached(id string) bool {
	s := e.get(id)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// ServeSurface upgrades the request and attaches it to surface id. A page
// that reconnects gets the initialization frames again before the queue.
func (e *Engine) ServeSurface(w http.ResponseWriter, r *http.Request, id string) {
	s := e.get(id)
	if s == nil {
		http.Error(w, "surface not found", http.StatusNotFound)
		return
	}
	s.mu.Lock()
	busy := s.conn != nil
	s.mu.Unlock()
	if busy {
		http.Error(w, "surface already attached", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("surface", id).Msg("ws upgrade error")
		return
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	if s.attached {
		s.replayInitialLocked()
	}
	s.attached = true
	s.mu.Unlock()

	log.Info().Str("surface", id).Str("remote", r.RemoteAddr).Msg("Surface attached")
	go s.writePump(conn)
	go s.readPump(conn)
	s.signal()
}

// replayInitialLocked puts every initialization frame at the head of the
// queue, once, for a page that connects after an earlier one went away.
func (s *surface) replayInitialLocked() {
	q := make([]frame, 0, len(s.initial)+len(s.queue))
	for _, data := range s.initial {
		q = append(q, frame{data: data, initial: true})
	}
	for _, f := range s.queue {
		if !f.initial {
			q = append(q, f)
		}
	}
	s.queue = q
}

func (s *surface) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *surface) writePump(conn *websocket.Conn) {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		s.mu.Lock()
		if s.conn != conn {
			s.mu.Unlock()
			s.signal()
			return
		}
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for i, f := range batch {
			if err := conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
				log.Warn().Err(err).Str("surface", s.id).Msg("ws write error")
				s.requeue(conn, batch[i:])
				_ = conn.Close()
				return
			}
		}
	}
}

// requeue puts unwritten frames back at the head of the queue after a
// failed write so a reconnecting page still receives them.
func (s *surface) requeue(conn *websocket.Conn, rest []frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn != conn {
		return
	}
	s.queue = append(append([]frame(nil), rest...), s.queue...)
}

type inbound struct {
	Type string `json:"type"`
}

func (s *surface) readPump(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		_ = conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("surface", s.id).Msg("Ignoring malformed surface message")
			continue
		}
		if msg.Type != "ready" && msg.Type != "loaded" {
			continue
		}
		s.mu.Lock()
		fn := s.onReady
		first := !s.readySeen
		s.readySeen = true
		s.mu.Unlock()
		if first && fn != nil {
			fn()
		}
	}
}
