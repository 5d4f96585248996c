package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/Carmen-Shannon/oxy-voxel/engine/game_state"
	"github.com/Carmen-Shannon/oxy-voxel/engine/instance"
	"github.com/Carmen-Shannon/oxy-voxel/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	clearColor           [4]float64
	cubeHalfExtent       float32

	instanceCount uint32
}

// Renderer draws the instanced voxel grid through an orbit camera.
//
// The Renderer owns one pipeline, one cube mesh, one instance buffer and one camera uniform.
// Everything that changes per frame arrives through Render as a game_state.FrameData, so the
// Renderer holds no game logic of its own.
type Renderer interface {
	// Resize reconfigures the surface and recreates the depth target for a new size.
	// Zero sizes (minimised windows) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered to the display.
	// A call to Resize is required for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// UploadInstances copies the marshalled instance grid into the GPU instance buffer.
	// It must be called once before the first Render.
	//
	// Parameters:
	//   - buf: the instance buffer to upload
	//
	// Returns:
	//   - error: an error if the GPU buffer could not be created
	UploadInstances(buf instance.InstanceBuffer) error

	// Render writes the frame's camera uniform and draws the frame's instance range.
	//
	// Parameters:
	//   - frame: the frame snapshot
	//
	// Returns:
	//   - error: ErrSurfaceAcquire (wrapped) when the frame was skipped for a lost surface,
	//     or any other GPU error
	Render(frame game_state.FrameData) error

	// Release frees every GPU resource held by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given window: it opens the GPU device, configures the
// surface at the window's size, builds the voxel pipeline and uploads the cube mesh.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window whose surface is rendered to
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if any GPU resource could not be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:             &sync.Mutex{},
		backendType:    backendType,
		presentMode:    PresentModeVSync,
		sampleCount:    MSAAOff,
		clearColor:     [4]float64{0.1, 0.2, 0.3, 1.0},
		cubeHalfExtent: DefaultCubeHalfExtent,
	}
	for _, option := range options {
		option(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		backend, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.sampleCount)
		if err != nil {
			return nil, fmt.Errorf("new renderer: %w", err)
		}
		r.backend = backend
	default:
		return nil, fmt.Errorf("new renderer: unsupported backend type %d", backendType)
	}

	r.backend.SetPresentMode(r.presentMode)
	r.backend.SetClearColor(r.clearColor)

	if err := r.backend.ConfigureSurface(win.Width(), win.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("new renderer: %w", err)
	}
	if err := r.backend.InitPipeline(VoxelShaderSource()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	vertices, indices := NewCubeMesh(r.cubeHalfExtent)
	if err := r.backend.InitMeshBuffers(common.SliceToBytes(vertices), common.SliceToBytes(indices), len(indices)); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	common.Logger().Info("renderer ready",
		"width", win.Width(), "height", win.Height(),
		"msaa", uint32(r.sampleCount), "presentMode", r.presentMode)
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		common.Logger().Error("surface resize failed", "width", width, "height", height, "error", err)
	}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	r.presentMode = mode
	r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) UploadInstances(buf instance.InstanceBuffer) error {
	if err := r.backend.InitInstanceBuffer(buf.Bytes()); err != nil {
		return fmt.Errorf("upload instances: %w", err)
	}
	r.mu.Lock()
	r.instanceCount = buf.Count()
	r.mu.Unlock()
	return nil
}

func (r *renderer) Render(frame game_state.FrameData) error {
	r.mu.Lock()
	count := r.instanceCount
	r.mu.Unlock()

	start, end := clampInstanceRange(frame.InstanceStart, frame.InstanceEnd, count)

	if err := r.backend.WriteCameraUniform(frame.CameraUniform); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return r.backend.DrawFrame(start, end)
}

func (r *renderer) Release() {
	r.backend.Release()
}

// clampInstanceRange keeps a draw range inside the uploaded instance buffer.
func clampInstanceRange(start, end, count uint32) (uint32, uint32) {
	end = min(end, count)
	start = min(start, end)
	return start, end
}
