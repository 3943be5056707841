package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-locator/internal/model"
)

type sourceFunc func(ctx context.Context) (model.LocationSample, error)

func (f sourceFunc) Fetch(ctx context.Context) (model.LocationSample, error) { return f(ctx) }

type sampleLog struct {
	mu      sync.Mutex
	samples []Sample
}

func (l *sampleLog) add(s Sample) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = append(l.samples, s)
}

func (l *sampleLog) snapshot() []Sample {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Sample(nil), l.samples...)
}

func TestPollerFetchesImmediatelyThenOnInterval(t *testing.T) {
	responses := []string{`{"lat":17.3850,"lon":78.4867}`, `{"lat":17.3852,"lon":78.4869}`}
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(responses) {
			n = len(responses) - 1
		}
		_, _ = w.Write([]byte(responses[n]))
	}))
	defer srv.Close()

	src, err := NewLocationSource(srv.URL, time.Second)
	require.NoError(t, err)
	p := NewPoller(src, time.Second)

	var got sampleLog
	h := p.Start(got.add, 50*time.Millisecond)
	defer p.Stop(h)

	require.Eventually(t, func() bool { return len(got.snapshot()) >= 1 }, time.Second, 5*time.Millisecond)
	first := got.snapshot()[0]
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, 17.3850, first.Latitude)

	require.Eventually(t, func() bool { return len(got.snapshot()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	samples := got.snapshot()
	assert.Equal(t, 17.3852, samples[1].Latitude)
	assert.Equal(t, 78.4869, samples[1].Longitude)
	for i := 1; i < len(samples); i++ {
		assert.Greater(t, samples[i].Seq, samples[i-1].Seq)
	}
}

func TestPollerContinuesAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			_, _ = w.Write([]byte(`{"lat":1}`))
		default:
			_, _ = w.Write([]byte(`{"lat":1,"lon":2}`))
		}
	}))
	defer srv.Close()

	src, err := NewLocationSource(srv.URL, time.Second)
	require.NoError(t, err)
	p := NewPoller(src, 0)

	var got sampleLog
	h := p.Start(got.add, 20*time.Millisecond)
	defer p.Stop(h)

	require.Eventually(t, func() bool { return len(got.snapshot()) >= 1 }, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, int(calls.Load()), 3)
	s := got.snapshot()[0]
	assert.Equal(t, 1.0, s.Latitude)
	assert.Equal(t, 2.0, s.Longitude)
	assert.GreaterOrEqual(t, s.Seq, uint64(3))
}

func TestPollerStopDiscardsInFlightResponse(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	done := make(chan struct{})
	src := sourceFunc(func(ctx context.Context) (model.LocationSample, error) {
		defer close(done)
		started <- struct{}{}
		<-release
		return model.LocationSample{Latitude: 1, Longitude: 2}, nil
	})
	p := NewPoller(src, 0)

	var got sampleLog
	h := p.Start(got.add, time.Hour)
	<-started
	p.Stop(h)
	assert.False(t, h.Live())
	close(release)
	<-done

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, got.snapshot())
}

func TestPollerStopIsIdempotent(t *testing.T) {
	src := sourceFunc(func(ctx context.Context) (model.LocationSample, error) {
		return model.LocationSample{}, ErrNoPosition
	})
	p := NewPoller(src, 0)
	h := p.Start(func(Sample) {}, 10*time.Millisecond)
	p.Stop(h)
	p.Stop(h)
	p.Stop(nil)
	assert.False(t, h.Live())
}

func TestPollerStopCancelsTicks(t *testing.T) {
	var calls atomic.Int32
	src := sourceFunc(func(ctx context.Context) (model.LocationSample, error) {
		calls.Add(1)
		return model.LocationSample{}, errors.New("boom")
	})
	p := NewPoller(src, 0)
	h := p.Start(func(Sample) {}, 10*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 2*time.Millisecond)
	p.Stop(h)

	time.Sleep(30 * time.Millisecond)
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestPollerOverlappingRequestsKeepIssueOrderSeq(t *testing.T) {
	var calls atomic.Int32
	slow := make(chan struct{})
	src := sourceFunc(func(ctx context.Context) (model.LocationSample, error) {
		if calls.Add(1) == 1 {
			<-slow
			return model.LocationSample{Latitude: 1}, nil
		}
		return model.LocationSample{Latitude: 2}, nil
	})
	p := NewPoller(src, 0)

	var got sampleLog
	h := p.Start(got.add, 10*time.Millisecond)
	defer p.Stop(h)

	require.Eventually(t, func() bool { return len(got.snapshot()) >= 1 }, time.Second, 2*time.Millisecond)
	close(slow)
	require.Eventually(t, func() bool {
		for _, s := range got.snapshot() {
			if s.Seq == 1 {
				return true
			}
		}
		return false
	}, time.Second, 2*time.Millisecond)

	samples := got.snapshot()
	assert.Equal(t, 2.0, samples[0].Latitude)
	assert.Greater(t, samples[0].Seq, uint64(1))
}
