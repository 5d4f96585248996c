package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/game_state"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu        sync.Mutex
	frames    []game_state.FrameData
	failEvery int
	err       error
	calls     int
	width     int
	height    int
}

func (f *fakeRenderer) Resize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
}

func (f *fakeRenderer) Render(frame game_state.FrameData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.failEvery > 0 && f.calls%f.failEvery == 0 {
		return fmt.Errorf("%w: outdated", renderer.ErrSurfaceAcquire)
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeRenderer) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeRenderer) lastFrame() game_state.FrameData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func newTestGameState(t *testing.T) game_state.GameState {
	t.Helper()
	gs, err := game_state.NewGameState(config.Default())
	require.NoError(t, err)
	return gs
}

// runAsync starts e.Run and returns a channel closed when it returns.
func runAsync(e Engine) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	return done
}

func TestHeadlessRunTicksAndRenders(t *testing.T) {
	gs := newTestGameState(t)
	fr := &fakeRenderer{}

	var ticksMu sync.Mutex
	ticks := 0
	e := NewEngine(
		WithGameState(gs),
		WithRenderer(fr),
		WithTickRate(500),
		WithRenderFrameLimit(500),
	)
	e.SetTickCallback(func(float32) {
		ticksMu.Lock()
		ticks++
		ticksMu.Unlock()
	})

	done := runAsync(e)
	require.Eventually(t, func() bool {
		return gs.VolumesRefreshed() >= 3 && fr.frameCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	ticksMu.Lock()
	assert.GreaterOrEqual(t, ticks, 3)
	ticksMu.Unlock()
	assert.GreaterOrEqual(t, e.FramesRendered(), uint64(3))

	frame := fr.lastFrame()
	assert.Len(t, frame.CameraUniform, 80)
	assert.Equal(t, uint32(0), frame.InstanceStart)
	assert.Equal(t, gs.Instances().Count(), frame.InstanceEnd)
}

func TestHeadlessRunDrawsFlickerWindow(t *testing.T) {
	gs := newTestGameState(t)
	gs.SetFlicker(true)
	fr := &fakeRenderer{}

	e := NewEngine(WithGameState(gs), WithRenderer(fr), WithTickRate(500), WithRenderFrameLimit(500))
	done := runAsync(e)
	require.Eventually(t, func() bool { return fr.frameCount() >= 2 }, 2*time.Second, 5*time.Millisecond)
	e.Quit()
	<-done

	layer := gs.Instances().LayerSize()
	assert.Equal(t, layer, fr.lastFrame().InstanceCount())
}

func TestSurfaceAcquireSkipsFrame(t *testing.T) {
	gs := newTestGameState(t)
	fr := &fakeRenderer{failEvery: 2}

	e := NewEngine(WithGameState(gs), WithRenderer(fr), WithRenderFrameLimit(1000))
	done := runAsync(e)
	require.Eventually(t, func() bool {
		return e.FramesSkipped() >= 2 && e.FramesRendered() >= 2
	}, 2*time.Second, 5*time.Millisecond)
	e.Quit()
	<-done
}

func TestPersistentRenderErrorStopsEngine(t *testing.T) {
	gs := newTestGameState(t)
	fr := &fakeRenderer{err: errors.New("device lost")}

	e := NewEngine(WithGameState(gs), WithRenderer(fr), WithMaxRenderFailures(5))
	done := runAsync(e)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine kept rendering after repeated failures")
	}
	assert.Equal(t, uint64(5), e.FramesFailed())
	assert.Zero(t, e.FramesRendered())
}

func TestRenderFailureCountResetsOnSuccess(t *testing.T) {
	gs := newTestGameState(t)
	// Every other frame fails with a non-surface error, so the streak never reaches the limit.
	fr := &flakyRenderer{}

	e := NewEngine(WithGameState(gs), WithRenderer(fr), WithMaxRenderFailures(2))
	done := runAsync(e)
	require.Eventually(t, func() bool { return e.FramesFailed() >= 5 }, 2*time.Second, time.Millisecond)
	e.Quit()
	<-done
	assert.GreaterOrEqual(t, e.FramesRendered(), uint64(4))
}

type flakyRenderer struct {
	mu    sync.Mutex
	calls int
}

func (f *flakyRenderer) Resize(int, int) {}

func (f *flakyRenderer) Render(game_state.FrameData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls%2 == 0 {
		return errors.New("transient")
	}
	return nil
}

func TestQuitIsIdempotent(t *testing.T) {
	e := NewEngine()
	done := runAsync(e)
	e.Quit()
	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.Nil(t, e.Window())
	assert.Nil(t, e.GameState())
}

func TestSetTickRateWhileRunning(t *testing.T) {
	gs := newTestGameState(t)
	e := NewEngine(WithGameState(gs), WithTickRate(1))
	done := runAsync(e)

	require.Eventually(t, func() bool { return e.(*engine).running.Load() }, time.Second, time.Millisecond)
	e.SetTickRate(500)
	require.Eventually(t, func() bool { return gs.VolumesRefreshed() >= 3 }, 2*time.Second, 5*time.Millisecond)

	e.Quit()
	<-done
}

func TestWithConfig(t *testing.T) {
	e := NewEngine(WithConfig(config.EngineConfig{TickRate: 120, FrameLimit: 30, Profile: true})).(*engine)
	assert.Equal(t, time.Second/120, e.engineTickRate)
	assert.Equal(t, time.Second/30, e.renderFrameLimit)
	assert.True(t, e.profilingEnabled.Load())

	e.DisableProfiler()
	assert.False(t, e.profilingEnabled.Load())
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestIntervals(t *testing.T) {
	assert.Equal(t, time.Second/60, tickInterval(0))
	assert.Equal(t, time.Second/60, tickInterval(-5))
	assert.Equal(t, 4*time.Millisecond, tickInterval(250))
	assert.Zero(t, frameInterval(0))
	assert.Equal(t, 10*time.Millisecond, frameInterval(100))

	// Rates beyond one per nanosecond would truncate to a zero period.
	assert.Equal(t, time.Nanosecond, tickInterval(2e9))
	assert.Equal(t, time.Nanosecond, frameInterval(2e9))
}

func TestExtremeTickRateDoesNotPanic(t *testing.T) {
	e := NewEngine(WithConfig(config.EngineConfig{TickRate: 2e9}))
	assert.Equal(t, time.Nanosecond, e.(*engine).engineTickRate)

	done := runAsync(e)
	require.Eventually(t, func() bool { return e.(*engine).running.Load() }, time.Second, time.Millisecond)
	e.SetTickRate(1e12)
	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}
