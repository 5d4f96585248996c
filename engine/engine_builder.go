package engine

import (
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/game_state"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithWindow sets the window whose message loop Run drives and whose input feeds the game state.
// Without a window the engine runs headless.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer the render loop draws through.
// Without a renderer no render goroutine is started.
//
// Parameters:
//   - r: the frame renderer, typically a renderer.Renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r FrameRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithGameState sets the game state advanced on every tick and drawn on every frame.
//
// Parameters:
//   - gs: the game state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGameState(gs game_state.GameState) EngineBuilderOption {
	return func(e *engine) {
		e.gameState = gs
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameInterval(fps)
	}
}

// WithMaxRenderFailures sets how many consecutive failed frames stop the engine.
// Surface-acquire skips do not count. Pass 0 to keep rendering regardless.
//
// Parameters:
//   - n: the consecutive failure limit (default 600)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxRenderFailures(n int) EngineBuilderOption {
	return func(e *engine) {
		e.maxRenderFailures = max(n, 0)
	}
}

// WithConfig applies the tick rate, frame limit and profiling settings from cfg.
//
// Parameters:
//   - cfg: the engine section of the demo configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.EngineConfig) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(float64(cfg.TickRate))
		e.renderFrameLimit = frameInterval(float64(cfg.FrameLimit))
		e.profilingEnabled.Store(cfg.Profile)
	}
}
