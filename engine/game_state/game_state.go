package game_state

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/config"
	"github.com/Carmen-Shannon/oxy-voxel/engine/instance"
	"github.com/tanema/gween/ease"
)

// FrameData is everything the renderer needs for one frame, captured at a single instant.
type FrameData struct {
	// CameraUniform is the marshalled GPUCameraUniform (80 bytes).
	CameraUniform []byte
	// InstanceStart and InstanceEnd bound the instanced draw: [InstanceStart, InstanceEnd).
	InstanceStart uint32
	InstanceEnd   uint32
}

// InstanceCount returns the number of instances the frame draws.
func (f FrameData) InstanceCount() uint32 {
	return f.InstanceEnd - f.InstanceStart
}

// GameState owns the orbit camera, its input controller, the instance grid and the
// flicker window. Input handlers are safe to call from the window thread while Update
// and Frame run on the engine's tick and render goroutines.
type GameState interface {
	// Camera returns the orbit camera.
	Camera() camera.OrbitCamera

	// Controller returns the camera's input controller.
	Controller() camera.CameraController

	// Instances returns the instance buffer the renderer uploads once at startup.
	Instances() instance.InstanceBuffer

	// Cycler returns the flicker window cycler.
	Cycler() instance.InstanceWindowCycler

	// FlickerEnabled reports whether only one layer is drawn per frame.
	//
	// Returns:
	//   - bool: true while voxel flicker is on
	FlickerEnabled() bool

	// SetFlicker turns voxel flicker on or off.
	//
	// Parameters:
	//   - enabled: the new flicker state
	SetFlicker(enabled bool)

	// VolumesRefreshed returns how many updates have run.
	//
	// Returns:
	//   - uint64: the update count
	VolumesRefreshed() uint64

	// HandleKeyDown reacts to a key press: Key0 toggles flicker, KeyR resets the camera.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	//
	// Returns:
	//   - bool: true if the key was consumed
	HandleKeyDown(keyCode uint32) bool

	// HandleMouseButton opens or closes the drag-rotate gate for the left mouse button.
	//
	// Parameters:
	//   - button: the mouse button (common.MouseButton*)
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the button was consumed
	HandleMouseButton(button int, pressed bool) bool

	// HandleMouseMotion rotates the camera by a relative mouse delta while dragging.
	//
	// Parameters:
	//   - dx, dy: the mouse delta in pixels
	//
	// Returns:
	//   - bool: true if the camera moved
	HandleMouseMotion(dx, dy float32) bool

	// HandleScroll zooms the camera.
	//
	// Parameters:
	//   - delta: the scroll delta (positive = zoom in)
	//
	// Returns:
	//   - bool: always true, scroll is never gated
	HandleScroll(delta float32) bool

	// Resize updates the camera's aspect ratio. Zero sizes (minimised windows) are ignored.
	//
	// Parameters:
	//   - width, height: the new framebuffer size in pixels
	Resize(width, height int)

	// Update runs one fixed tick: eases any zoom in flight, refreshes the camera,
	// and advances the flicker window when flicker is enabled.
	//
	// Parameters:
	//   - dt: seconds since the previous tick
	Update(dt float32)

	// Frame snapshots the camera uniform and the instance range to draw. With flicker off
	// the whole pool is drawn; with flicker on only the current window is.
	//
	// Returns:
	//   - FrameData: the frame snapshot
	Frame() FrameData
}

type gameStateImpl struct {
	mu *sync.Mutex

	cam        camera.OrbitCamera
	controller camera.CameraController
	instances  instance.InstanceBuffer
	cycler     instance.InstanceWindowCycler

	initialDistance float32
	initialPitch    float32
	initialYaw      float32

	flicker          bool
	volumesRefreshed uint64

	aspect float32
	pool   worker.DynamicWorkerPool
}

var _ GameState = &gameStateImpl{}

// GameStateOption is a functional option for configuring a GameState.
type GameStateOption func(*gameStateImpl)

// WithAspect sets the initial camera aspect ratio. Defaults to the configured window's.
//
// Parameters:
//   - aspect: width / height
//
// Returns:
//   - GameStateOption: functional option to set the aspect ratio
func WithAspect(aspect float32) GameStateOption {
	return func(g *gameStateImpl) {
		g.aspect = aspect
	}
}

// WithWorkerPool marshals the instance grid on a shared worker pool.
//
// Parameters:
//   - pool: the worker pool, owned by the caller
//
// Returns:
//   - GameStateOption: functional option to share a worker pool
func WithWorkerPool(pool worker.DynamicWorkerPool) GameStateOption {
	return func(g *gameStateImpl) {
		g.pool = pool
	}
}

// NewGameState builds the camera, controller, instance grid and flicker cycler from cfg.
// The cycler's window is one grid plane.
//
// Parameters:
//   - cfg: the demo configuration; it is validated first
//   - options: functional options to configure the game state
//
// Returns:
//   - GameState: the game state
//   - error: a validation, grid or cycler error
func NewGameState(cfg config.Config, options ...GameStateOption) (GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new game state: %w", err)
	}

	g := &gameStateImpl{
		mu:              &sync.Mutex{},
		initialDistance: cfg.Camera.Distance,
		initialPitch:    cfg.Camera.Pitch,
		initialYaw:      cfg.Camera.Yaw,
		flicker:         cfg.Engine.Flicker,
	}
	if cfg.Window.Height > 0 {
		g.aspect = float32(cfg.Window.Width) / float32(cfg.Window.Height)
	}
	for _, option := range options {
		option(g)
	}
	g.aspect = common.Coalesce(g.aspect, 1)

	g.cam = camera.NewOrbitCamera(
		cfg.Camera.Distance, cfg.Camera.Pitch, cfg.Camera.Yaw,
		cfg.Camera.Target, g.aspect,
		camera.WithBounds(cfg.Camera.Bounds()),
		camera.WithFov(cfg.Camera.Fov),
		camera.WithNear(cfg.Camera.Near),
		camera.WithFar(cfg.Camera.Far),
	)
	g.controller = camera.NewCameraController(
		camera.WithRotateSpeed(cfg.Camera.RotateSpeed),
		camera.WithZoomSpeed(cfg.Camera.ZoomSpeed),
		camera.WithZoomEasing(cfg.Camera.ZoomEasing, ease.OutCubic),
	)

	var bufOpts []instance.InstanceBufferOption
	if g.pool != nil {
		bufOpts = append(bufOpts, instance.WithWorkerPool(g.pool))
	}
	instances, err := instance.NewInstanceBuffer(cfg.Grid, bufOpts...)
	if err != nil {
		return nil, fmt.Errorf("new game state: %w", err)
	}
	g.instances = instances

	cycler, err := instance.NewInstanceWindowCycler(instances.Count(), instances.LayerSize())
	if err != nil {
		return nil, fmt.Errorf("new game state: %w", err)
	}
	g.cycler = cycler

	return g, nil
}

func (g *gameStateImpl) Camera() camera.OrbitCamera {
	return g.cam
}

func (g *gameStateImpl) Controller() camera.CameraController {
	return g.controller
}

func (g *gameStateImpl) Instances() instance.InstanceBuffer {
	return g.instances
}

func (g *gameStateImpl) Cycler() instance.InstanceWindowCycler {
	return g.cycler
}

func (g *gameStateImpl) FlickerEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flicker
}

func (g *gameStateImpl) SetFlicker(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flicker = enabled
}

func (g *gameStateImpl) VolumesRefreshed() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.volumesRefreshed
}

func (g *gameStateImpl) HandleKeyDown(keyCode uint32) bool {
	switch keyCode {
	case common.Key0:
		g.mu.Lock()
		g.flicker = !g.flicker
		enabled := g.flicker
		g.mu.Unlock()
		common.Logger().Debug("voxel flicker toggled", "enabled", enabled)
		return true
	case common.KeyR:
		g.controller.CancelZoom()
		g.cam.SetDistance(g.initialDistance)
		g.cam.SetPitch(g.initialPitch)
		g.cam.SetYaw(g.initialYaw)
		common.Logger().Debug("orbit camera reset",
			"distance", g.cam.Distance(), "pitch", g.cam.Pitch(), "yaw", g.cam.Yaw())
		return true
	}
	return false
}

func (g *gameStateImpl) HandleMouseButton(button int, pressed bool) bool {
	if button != common.MouseButtonLeft {
		return false
	}
	g.controller.SetDragRotate(pressed)
	return true
}

func (g *gameStateImpl) HandleMouseMotion(dx, dy float32) bool {
	return g.controller.ProcessMouseMotion(g.cam, dx, dy)
}

func (g *gameStateImpl) HandleScroll(delta float32) bool {
	g.controller.ProcessScroll(g.cam, delta)
	return true
}

func (g *gameStateImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	g.cam.SetAspect(float32(width) / float32(height))
}

func (g *gameStateImpl) Update(dt float32) {
	g.controller.Update(g.cam, dt)
	g.cam.Update()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.flicker {
		g.cycler.Advance()
	}
	g.volumesRefreshed++
}

func (g *gameStateImpl) Frame() FrameData {
	uniform := camera.NewGPUCameraUniform(g.cam)
	frame := FrameData{CameraUniform: uniform.Marshal()}

	g.mu.Lock()
	flicker := g.flicker
	g.mu.Unlock()

	if flicker {
		frame.InstanceStart, frame.InstanceEnd = g.cycler.Range()
	} else {
		frame.InstanceStart, frame.InstanceEnd = 0, g.instances.Count()
	}
	return frame
}
