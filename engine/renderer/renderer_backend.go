package renderer

import "errors"

// ErrSurfaceAcquire is returned by Render when the swapchain texture could not be acquired,
// typically because the surface is lost or outdated after a resize. The surface has already
// been reconfigured when it is returned, so the caller may simply skip the frame.
var ErrSurfaceAcquire = errors.New("failed to acquire surface texture")

// ErrNoPipeline is returned when drawing before the voxel pipeline has been created.
var ErrNoPipeline = errors.New("render pipeline not initialized")

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
