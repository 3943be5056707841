// Package screen drives the map surfaces of one route screen: the inline
// preview that lives as long as the screen, and the optional expanded view.
package screen

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bus-locator/internal/bridge"
	"bus-locator/internal/model"
	"bus-locator/internal/routes"
	"bus-locator/internal/telemetry"
)

var (
	ErrMounted = errors.New("screen: already mounted")
	ErrClosed  = errors.New("screen: closed")
)

type State string

const (
	StateClosed     State = "closed"
	StateInlineOnly State = "inline"
	StateExpanded   State = "expanded"
)

const (
	RoleInline   = "inline"
	RoleExpanded = "expanded"
)

// DefaultSettleDelay is how long the expanded view waits for layout before
// it is resized.
const DefaultSettleDelay = 300 * time.Millisecond

// LocationPoller is the part of telemetry.Poller the controller uses.
type LocationPoller interface {
	Start(onSample func(telemetry.Sample), interval time.Duration) *telemetry.Handle
	Stop(h *telemetry.Handle)
}

type Options struct {
	PollInterval time.Duration
	SettleDelay  time.Duration
}

// Controller owns the surfaces and the poll subscription of one screen.
// Positions are forwarded to every live surface; a position whose sequence
// number is not newer than the last one applied is dropped.
type Controller struct {
	id     string
	bridge *bridge.Bridge
	poller LocationPoller
	opts   Options
	log    zerolog.Logger

	mu       sync.Mutex
	state    State
	route    model.RouteDescriptor
	inline   *bridge.Surface
	expanded *bridge.Surface
	poll     *telemetry.Handle
	lastSeq  uint64

	settle        *time.Timer
	resizePending bool
}

func NewController(id string, b *bridge.Bridge, poller LocationPoller, opts Options) *Controller {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Controller{
		id:     id,
		bridge: b,
		poller: poller,
		opts:   opts,
		log:    log.With().Str("screen", id).Logger(),
		state:  StateClosed,
	}
}

func (c *Controller) ID() string { return c.id }

// Mount resolves routeKey, opens the inline surface and starts polling.
func (c *Controller) Mount(routeKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateClosed || c.inline != nil {
		return ErrMounted
	}
	c.route = routes.Resolve(routeKey)
	c.lastSeq = 0
	c.inline = c.bridge.Open(RoleInline, c.route, nil)
	c.state = StateInlineOnly
	c.poll = c.poller.Start(c.onSample, c.opts.PollInterval)
	c.log.Info().Str("route", c.route.ID).Str("surface", c.inline.ID).Msg("Screen mounted")
	return nil
}

// Toggle switches between the inline-only and expanded states and returns
// the new state.
func (c *Controller) Toggle() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateInlineOnly:
		c.expandLocked()
	case StateExpanded:
		c.collapseLocked()
	default:
		return c.state, ErrClosed
	}
	return c.state, nil
}

// Expand opens the expanded view. It is a no-op when already expanded.
func (c *Controller) Expand() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateInlineOnly:
		c.expandLocked()
	case StateClosed:
		return ErrClosed
	}
	return nil
}

// Collapse closes the expanded view. It is a no-op when not expanded.
func (c *Controller) Collapse() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateExpanded:
		c.collapseLocked()
	case StateClosed:
		return ErrClosed
	}
	return nil
}

func (c *Controller) expandLocked() {
	s := c.bridge.Open(RoleExpanded, c.route, c.onExpandedReady)
	c.expanded = s
	c.state = StateExpanded
	c.resizePending = false
	c.settle = time.AfterFunc(c.opts.SettleDelay, func() { c.settled(s) })
	c.log.Debug().Str("surface", s.ID).Msg("Expanded")
}

func (c *Controller) collapseLocked() {
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	c.bridge.Destroy(c.expanded)
	c.expanded = nil
	c.resizePending = false
	c.state = StateInlineOnly
	c.log.Debug().Msg("Collapsed")
}

// settled resizes the expanded surface once layout has had time to finish.
// If the surface is not ready yet the resize waits for its ready signal.
func (c *Controller) settled(s *bridge.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded != s {
		return
	}
	c.settle = nil
	if !s.Ready() {
		c.resizePending = true
		return
	}
	c.bridge.SendResize(s)
}

func (c *Controller) onExpandedReady(s *bridge.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded != s || !c.resizePending {
		return
	}
	c.resizePending = false
	c.bridge.SendResize(s)
}

func (c *Controller) onSample(sample telemetry.Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	if sample.Seq <= c.lastSeq {
		c.log.Debug().Uint64("seq", sample.Seq).Uint64("last", c.lastSeq).Msg("Stale sample dropped")
		return
	}
	c.lastSeq = sample.Seq
	p := sample.Point()
	for _, s := range c.liveLocked() {
		c.bridge.SendPosition(s, p)
	}
}

func (c *Controller) liveLocked() []*bridge.Surface {
	out := make([]*bridge.Surface, 0, 2)
	if c.inline != nil {
		out = append(out, c.inline)
	}
	if c.expanded != nil {
		out = append(out, c.expanded)
	}
	return out
}

// Unmount stops polling and destroys every surface, expanded or not.
// Calling it more than once is a no-op.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	h := c.poll
	live := c.liveLocked()
	c.poll, c.inline, c.expanded = nil, nil, nil
	c.resizePending = false
	c.mu.Unlock()

	// c.mu must be free here: a running sample callback holds the poll handle and waits on c.mu.
	c.poller.Stop(h)
	for _, s := range live {
		c.bridge.Destroy(s)
	}
	c.log.Info().Msg("Screen unmounted")
}

// View is a snapshot of the controller.
type View struct {
	Screen   string                `json:"screen"`
	State    State                 `json:"state"`
	Route    model.RouteDescriptor `json:"route"`
	Inline   string                `json:"inline,omitempty"`
	Expanded string                `json:"expanded,omitempty"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{Screen: c.id, State: c.state, Route: c.route}
	if c.inline != nil {
		v.Inline = c.inline.ID
	}
	if c.expanded != nil {
		v.Expanded = c.expanded.ID
	}
	return v
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
