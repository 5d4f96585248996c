package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/game_state"
	"github.com/Carmen-Shannon/oxy-voxel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-voxel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
)

// FrameRenderer draws one frame snapshot. renderer.Renderer satisfies it.
type FrameRenderer interface {
	// Resize reconfigures the render target for a new framebuffer size.
	Resize(width, height int)

	// Render draws a frame. renderer.ErrSurfaceAcquire is treated as a skipped frame.
	Render(frame game_state.FrameData) error
}

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	renderer  FrameRenderer
	gameState game_state.GameState

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	framesRendered atomic.Uint64
	framesSkipped  atomic.Uint64
	framesFailed   atomic.Uint64

	maxRenderFailures int // consecutive failures before quitting; 0 = never
}

const (
	// defaultMaxRenderFailures stops the engine after about ten seconds of failed frames at 60 FPS.
	defaultMaxRenderFailures = 600
	// renderFailureLogEvery throttles logging of repeated render failures.
	renderFailureLogEvery = 60
)

// Engine is the main entry point for the engine.
// It runs the fixed-rate tick loop that advances the GameState, the render loop that draws
// GameState.Frame, and the window message loop that feeds input back into the GameState.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// GameState returns the game state the engine advances.
	//
	// Returns:
	//   - game_state.GameState: the game state, or nil if none was set
	GameState() game_state.GameState

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called after the GameState update on each tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// FramesRendered returns how many frames the renderer has drawn.
	//
	// Returns:
	//   - uint64: rendered frame count
	FramesRendered() uint64

	// FramesSkipped returns how many frames were dropped for an unavailable surface.
	//
	// Returns:
	//   - uint64: skipped frame count
	FramesSkipped() uint64

	// FramesFailed returns how many frames failed with an error other than an unavailable surface.
	//
	// Returns:
	//   - uint64: failed frame count
	FramesFailed() uint64

	// Run starts the engine. With a window it blocks until the window closes; headless it
	// blocks until Quit is called. Every engine goroutine has exited when Run returns.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// When both a window and a game state are set, window input and resize events are routed
// to the game state (and resizes to the renderer).
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:   make(chan time.Duration, 1),
		quitChannel:       make(chan struct{}),
		profiler:          profiler.NewProfiler(),
		engineTickRate:    time.Second / 60,
		maxRenderFailures: defaultMaxRenderFailures,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow routes window events to the renderer and game state.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		if e.renderer != nil {
			e.renderer.Resize(width, height)
		}
		if e.gameState != nil {
			e.gameState.Resize(width, height)
		}
	})

	if e.gameState == nil {
		return
	}
	gs := e.gameState
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		gs.HandleKeyDown(keyCode)
	})
	e.window.SetMouseButtonCallback(func(button int, pressed bool) {
		gs.HandleMouseButton(button, pressed)
	})
	e.window.SetMouseMoveCallback(func(dx, dy float32) {
		gs.HandleMouseMotion(dx, dy)
	})
	e.window.SetScrollCallback(func(delta float32) {
		gs.HandleScroll(delta)
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) GameState() game_state.GameState {
	return e.gameState
}

func (e *engine) Run() {
	common.Logger().Info("engine started",
		"tickRate", e.engineTickRate, "frameLimit", e.renderFrameLimit, "headless", e.window == nil)
	e.running.Store(true)
	e.handle()

	if e.window != nil {
		// The window must be closed on the thread that runs its message loop.
		closed := false
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				if !closed {
					closed = true
					_ = e.window.Close()
				}
			default:
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
		if !closed {
			_ = e.window.Close()
		}
	} else {
		<-e.quitChannel
	}

	e.wg.Wait()
	common.Logger().Info("engine stopped",
		"framesRendered", e.framesRendered.Load(),
		"framesSkipped", e.framesSkipped.Load(),
		"framesFailed", e.framesFailed.Load())
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the tick and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(1)
	go e.handleEngine()
	if e.renderer != nil && e.gameState != nil {
		e.wg.Add(1)
		go e.handleRender()
	}
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Advances the game state and fires the tick callback at the configured tick rate, and
// listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.gameState != nil {
				e.gameState.Update(dt)
			}
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	consecutiveFailures := 0

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		err := e.renderer.Render(e.gameState.Frame())
		switch {
		case err == nil:
			e.framesRendered.Add(1)
			consecutiveFailures = 0
		case errors.Is(err, renderer.ErrSurfaceAcquire):
			e.framesSkipped.Add(1)
			common.Logger().Debug("frame skipped", "error", err)
		default:
			e.framesFailed.Add(1)
			consecutiveFailures++
			if consecutiveFailures%renderFailureLogEvery == 1 {
				common.Logger().Error("render failed", "error", err, "consecutive", consecutiveFailures)
			}
			if e.maxRenderFailures > 0 && consecutiveFailures >= e.maxRenderFailures {
				common.Logger().Error("render keeps failing, stopping engine", "error", err, "consecutive", consecutiveFailures)
				e.signalQuit()
				return
			}
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if e.profilingEnabled.Load() && e.profiler != nil {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			elapsed := time.Since(lastRender)
			if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
				select {
				case <-e.quitChannel:
					return
				case <-time.After(remaining):
				}
			}
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameInterval(fps)
}

func (e *engine) FramesRendered() uint64 {
	return e.framesRendered.Load()
}

func (e *engine) FramesSkipped() uint64 {
	return e.framesSkipped.Load()
}

func (e *engine) FramesFailed() uint64 {
	return e.framesFailed.Load()
}

// tickInterval converts a tick rate to a ticker period, defaulting to 60Hz.
// The period never drops below one nanosecond, the smallest a time.Ticker accepts.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return max(time.Duration(float64(time.Second)/fps), time.Nanosecond)
}

// frameInterval converts a frame cap to a minimum frame duration; 0 means uncapped.
func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return max(time.Duration(float64(time.Second)/fps), time.Nanosecond)
}
