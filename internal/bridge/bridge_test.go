package bridge_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-locator/internal/bridge"
	"bus-locator/internal/bridge/bridgetest"
	"bus-locator/internal/model"
	"bus-locator/internal/routes"
)

func pt(lat, lon float64) model.GeoPoint {
	return model.GeoPoint{Latitude: lat, Longitude: lon}
}

func TestOpenSendsInitializeAndQueuesStops(t *testing.T) {
	rec := bridgetest.NewRecorder(false)
	b := bridge.New(rec)
	d := routes.Resolve("vv1")

	s := b.Open("inline", d, nil)
	assert.True(t, rec.IsOpen(s.ID))
	assert.Equal(t, []bridge.Kind{bridge.KindInitialize}, rec.Kinds(s.ID))
	assert.False(t, s.Ready())

	first := rec.Commands(s.ID)[0]
	require.NotNil(t, first.Center)
	assert.Equal(t, d.Center, *first.Center)
	assert.Equal(t, bridge.DefaultZoom, first.Zoom)

	rec.Ready(s.ID)
	assert.True(t, s.Ready())
	cmds := rec.Commands(s.ID)
	require.Len(t, cmds, 2)
	assert.Equal(t, bridge.KindUpsertStopMarkers, cmds[1].Kind)
	require.Len(t, cmds[1].Markers, 4)
	assert.Equal(t, "Main Bus Station", cmds[1].Markers[0].Label)
	assert.Equal(t, d.StopCoordinates[3], cmds[1].Markers[3].Point)
}

func TestSendBeforeReadyIsReplayedInOrder(t *testing.T) {
	rec := bridgetest.NewRecorder(false)
	b := bridge.New(rec)
	s := b.Open("inline", routes.Resolve("vv1"), nil)

	b.SendPosition(s, pt(1, 1))
	b.SendResize(s)
	b.SendPosition(s, pt(2, 2))
	assert.Len(t, rec.Commands(s.ID), 1)

	rec.Ready(s.ID)
	assert.Equal(t, []bridge.Kind{
		bridge.KindInitialize,
		bridge.KindUpsertStopMarkers,
		bridge.KindUpdateVehicleMarker,
		bridge.KindRecenter,
		bridge.KindUpdateVehicleMarker,
		bridge.KindRecenter,
	}, rec.Kinds(s.ID))
	cmds := rec.Commands(s.ID)
	assert.Equal(t, pt(1, 1), *cmds[2].Point)
	assert.Equal(t, pt(2, 2), *cmds[5].Point)
}

func TestReadyOnlyCountsOnce(t *testing.T) {
	rec := bridgetest.NewRecorder(false)
	b := bridge.New(rec)

	var calls sync.WaitGroup
	calls.Add(1)
	var n int
	var mu sync.Mutex
	s := b.Open("inline", routes.Resolve("vv1"), func(*bridge.Surface) {
		mu.Lock()
		n++
		mu.Unlock()
		calls.Done()
	})
	rec.Ready(s.ID)
	rec.Ready(s.ID)
	calls.Wait()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, n)
	mu.Unlock()
	assert.Equal(t, 1, rec.Count(s.ID, bridge.KindUpsertStopMarkers))
}

func TestSendAfterReadyIsImmediate(t *testing.T) {
	rec := bridgetest.NewRecorder(true)
	b := bridge.New(rec)
	s := b.Open("inline", routes.Resolve("vv1"), nil)
	require.True(t, s.Ready())

	b.SendPosition(s, pt(17.3850, 78.4867))
	b.SendResize(s)
	assert.Equal(t, []bridge.Kind{
		bridge.KindInitialize,
		bridge.KindUpsertStopMarkers,
		bridge.KindUpdateVehicleMarker,
		bridge.KindRecenter,
		bridge.KindResize,
		bridge.KindInvalidateSize,
	}, rec.Kinds(s.ID))
}

func TestOpenOnlyCommandsAreRejected(t *testing.T) {
	rec := bridgetest.NewRecorder(true)
	b := bridge.New(rec)
	d := routes.Resolve("vv1")
	s := b.Open("inline", d, nil)

	b.Send(s, bridge.Initialize(d))
	b.Send(s, bridge.UpsertStopMarkers(d))
	assert.Equal(t, 1, rec.Count(s.ID, bridge.KindInitialize))
	assert.Equal(t, 1, rec.Count(s.ID, bridge.KindUpsertStopMarkers))
}

func TestSurfacesAreIsolated(t *testing.T) {
	rec := bridgetest.NewRecorder(true)
	b := bridge.New(rec)
	d := routes.Resolve("vv1")
	a := b.Open("inline", d, nil)
	c := b.Open("expanded", d, nil)
	require.NotEqual(t, a.ID, c.ID)

	b.SendPosition(a, pt(1, 1))
	b.SendResize(c)

	assert.Zero(t, rec.Count(a.ID, bridge.KindResize))
	assert.Zero(t, rec.Count(c.ID, bridge.KindUpdateVehicleMarker))
	assert.Equal(t, 1, rec.Count(a.ID, bridge.KindRecenter))
	assert.Equal(t, 1, rec.Count(c.ID, bridge.KindInvalidateSize))
}

func TestPositionPairIsNeverSplit(t *testing.T) {
	rec := bridgetest.NewRecorder(true)
	b := bridge.New(rec)
	s := b.Open("inline", routes.Resolve("vv1"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			b.SendPosition(s, pt(float64(i), float64(i)))
		}(i)
		go func() {
			defer wg.Done()
			b.SendResize(s)
		}()
	}
	wg.Wait()

	cmds := rec.Commands(s.ID)[2:]
	for i := 0; i < len(cmds); i++ {
		switch cmds[i].Kind {
		case bridge.KindUpdateVehicleMarker:
			require.Less(t, i+1, len(cmds))
			assert.Equal(t, bridge.KindRecenter, cmds[i+1].Kind)
			assert.Equal(t, *cmds[i].Point, *cmds[i+1].Point)
			i++
		case bridge.KindResize:
			require.Less(t, i+1, len(cmds))
			assert.Equal(t, bridge.KindInvalidateSize, cmds[i+1].Kind)
			i++
		default:
			t.Fatalf("unexpected %s at %d", cmds[i].Kind, i)
		}
	}
}

func TestDestroyStopsDelivery(t *testing.T) {
	rec := bridgetest.NewRecorder(false)
	b := bridge.New(rec)
	s := b.Open("expanded", routes.Resolve("vv1"), nil)
	b.SendPosition(s, pt(1, 1))
	assert.Equal(t, 1, b.Live())

	b.Destroy(s)
	b.Destroy(s)
	assert.True(t, s.Closed())
	assert.True(t, rec.IsClosed(s.ID))
	assert.Zero(t, b.Live())
	_, ok := b.Surface(s.ID)
	assert.False(t, ok)

	rec.Ready(s.ID)
	b.SendPosition(s, pt(2, 2))
	assert.Equal(t, []bridge.Kind{bridge.KindInitialize}, rec.Kinds(s.ID))
}
