package camera

// OrbitCameraOption is a functional option for configuring an OrbitCamera.
type OrbitCameraOption func(*orbitCameraImpl)

// WithBounds sets the bounds the camera is clamped against.
// The initial distance, pitch and yaw passed to NewOrbitCamera are clamped to them.
//
// Parameters:
//   - bounds: the movement bounds
//
// Returns:
//   - OrbitCameraOption: functional option to set the bounds
func WithBounds(bounds OrbitCameraBounds) OrbitCameraOption {
	return func(c *orbitCameraImpl) {
		c.bounds = bounds
	}
}

// WithUp sets the camera's reference up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - OrbitCameraOption: functional option to set the up vector
func WithUp(x, y, z float32) OrbitCameraOption {
	return func(c *orbitCameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - OrbitCameraOption: functional option to set the field of view
func WithFov(fov float32) OrbitCameraOption {
	return func(c *orbitCameraImpl) {
		c.fov = fov
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - OrbitCameraOption: functional option to set the near plane
func WithNear(near float32) OrbitCameraOption {
	return func(c *orbitCameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - OrbitCameraOption: functional option to set the far plane
func WithFar(far float32) OrbitCameraOption {
	return func(c *orbitCameraImpl) {
		c.far = far
	}
}
