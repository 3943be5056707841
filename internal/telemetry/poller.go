package telemetry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"bus-locator/internal/model"
)

// Sample is a LocationSample tagged with the sequence number of the request
// that produced it. Sequence numbers grow in request issue order, so a
// consumer can drop responses that arrive after a newer one.
type Sample struct {
	Seq uint64
	model.LocationSample
}

// Poller fetches the vehicle position once immediately and then on every
// tick of a fixed interval. A slow fetch does not delay the next tick, so
// requests may overlap.
type Poller struct {
	source  Source
	timeout time.Duration
}

// NewPoller returns a poller reading from source. timeout bounds a single
// fetch; zero means no bound beyond the source's own client timeout.
func NewPoller(source Source, timeout time.Duration) *Poller {
	return &Poller{source: source, timeout: timeout}
}

// Handle is the cancellation token of one Start call.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	live     bool
	onSample func(Sample)

	seq atomic.Uint64
}

// Live reports whether the handle has not been stopped.
func (h *Handle) Live() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Start begins polling and calls onSample for every decoded position, in
// receipt order. Callbacks never run concurrently with each other.
func (p *Poller) Start(onSample func(Sample), interval time.Duration) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{ctx: ctx, cancel: cancel, live: true, onSample: onSample}
	go p.run(h, interval)
	return h
}

// Stop cancels future ticks and in-flight requests. When Stop returns no
// further onSample call will be made for h. Stopping twice is a no-op.
func (p *Poller) Stop(h *Handle) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.live = false
	h.mu.Unlock()
	h.cancel()
}

func (p *Poller) run(h *Handle, interval time.Duration) {
	go p.tick(h)
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-t.C:
			go p.tick(h)
		}
	}
}

func (p *Poller) tick(h *Handle) {
	seq := h.seq.Add(1)
	ctx := h.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	sample, err := p.source.Fetch(ctx)
	if err != nil {
		switch {
		case h.ctx.Err() != nil:
		case errors.Is(err, ErrNoPosition):
			log.Debug().Uint64("seq", seq).Msg("Poll response without position discarded")
		default:
			log.Warn().Err(err).Uint64("seq", seq).Msg("Poll failed")
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.live {
		return
	}
	h.onSample(Sample{Seq: seq, LocationSample: sample})
}
