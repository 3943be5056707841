// Package bridgetest provides an in-memory bridge.Engine that records every
// command it receives.
package bridgetest

import (
	"sync"

	"bus-locator/internal/bridge"
)

// Entry is one delivered command.
type Entry struct {
	Surface string
	Command bridge.Command
}

// Recorder is a fake engine. With AutoReady set it signals ready as soon as
// a surface receives Initialize; otherwise tests call Ready.
type Recorder struct {
	AutoReady bool

	mu      sync.Mutex
	open    map[string]bool
	closed  map[string]bool
	ready   map[string]func()
	entries []Entry
}

func NewRecorder(autoReady bool) *Recorder {
	return &Recorder{
		AutoReady: autoReady,
		open:      make(map[string]bool),
		closed:    make(map[string]bool),
		ready:     make(map[string]func()),
	}
}

func (r *Recorder) Open(surface string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[surface] = true
}

func (r *Recorder) OnReady(surface string, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready[surface] = fn
}

func (r *Recorder) Send(surface string, cmd bridge.Command) {
	r.mu.Lock()
	if !r.open[surface] {
		r.mu.Unlock()
		return
	}
	r.entries = append(r.entries, Entry{Surface: surface, Command: cmd})
	auto := r.AutoReady && cmd.Kind == bridge.KindInitialize
	r.mu.Unlock()

	if auto {
		r.Ready(surface)
	}
}

func (r *Recorder) Close(surface string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.open, surface)
	r.closed[surface] = true
}

// Ready fires the surface's ready callback, as the sandbox would.
func (r *Recorder) Ready(surface string) {
	r.mu.Lock()
	fn := r.ready[surface]
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// IsOpen reports whether surface is open on the engine.
func (r *Recorder) IsOpen(surface string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open[surface]
}

// IsClosed reports whether surface was closed.
func (r *Recorder) IsClosed(surface string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed[surface]
}

// Entries returns every recorded command in delivery order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Commands returns the commands delivered to surface, in order.
func (r *Recorder) Commands(surface string) []bridge.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bridge.Command
	for _, e := range r.entries {
		if e.Surface == surface {
			out = append(out, e.Command)
		}
	}
	return out
}

// Kinds returns the kinds delivered to surface, in order.
func (r *Recorder) Kinds(surface string) []bridge.Kind {
	cmds := r.Commands(surface)
	out := make([]bridge.Kind, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Kind)
	}
	return out
}

// Count returns how many commands of kind reached surface.
func (r *Recorder) Count(surface string, kind bridge.Kind) int {
	n := 0
	for _, c := range r.Commands(surface) {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
