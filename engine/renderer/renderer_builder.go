package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, MSAA is off.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.sampleCount = count
	}
}

// WithClearColor sets the background colour each frame is cleared to.
//
// Parameters:
//   - rgba: red, green, blue and alpha in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(rgba [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = rgba
	}
}

// WithCubeHalfExtent sets half the edge length of every drawn cube.
//
// Parameters:
//   - halfExtent: half the cube edge length in world units
//
// Returns:
//   - RendererBuilderOption: a function that applies the cube size option to a renderer
func WithCubeHalfExtent(halfExtent float32) RendererBuilderOption {
	return func(r *renderer) {
		r.cubeHalfExtent = halfExtent
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
