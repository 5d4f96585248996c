package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-voxel/common"
)

// orbitCameraImpl keeps the spherical camera state and the eye derived from it.
type orbitCameraImpl struct {
	mu *sync.Mutex

	// Spherical coordinates relative to target
	distance float32
	pitch    float32 // Vertical angle from the horizontal plane
	yaw      float32 // Horizontal angle from +Z toward +X

	// eye is derived; only update() writes it
	eye    [3]float32
	target [3]float32
	up     [3]float32

	bounds OrbitCameraBounds

	aspect float32
	fov    float32
	near   float32
	far    float32
}

// OrbitCamera only permits rotation of the eye on a spherical shell around a target.
// Every mutator clamps its input against the camera's bounds and recomputes the eye,
// so the eye can never reach the target or flip over a pole.
type OrbitCamera interface {
	// Distance returns the distance between the eye and the target.
	//
	// Returns:
	//   - float32: the current orbit distance
	Distance() float32

	// Pitch returns the vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: pitch in radians
	Pitch() float32

	// Yaw returns the horizontal angle measured from +Z toward +X.
	//
	// Returns:
	//   - float32: yaw in radians
	Yaw() float32

	// Eye returns the world-space eye position (target plus the spherical offset).
	//
	// Returns:
	//   - x, y, z: world-space eye position
	Eye() (x, y, z float32)

	// EyeOffset returns the eye position relative to the target.
	//
	// Returns:
	//   - [3]float32: the spherical offset in cartesian form
	EyeOffset() [3]float32

	// Target returns the look-at point.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Up returns the reference up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Bounds returns a copy of the camera's movement bounds.
	//
	// Returns:
	//   - OrbitCameraBounds: the active bounds
	Bounds() OrbitCameraBounds

	// Aspect returns the viewport aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetDistance clamps distance into the bounds' distance range and recomputes the eye.
	//
	// Parameters:
	//   - distance: the new distance from the target
	SetDistance(distance float32)

	// AddDistance is SetDistance(Distance() + delta).
	//
	// Parameters:
	//   - delta: the amount to change the distance by
	AddDistance(delta float32)

	// SetPitch clamps pitch into [MinPitch, MaxPitch] and recomputes the eye.
	//
	// Parameters:
	//   - pitch: the new pitch in radians
	SetPitch(pitch float32)

	// AddPitch is SetPitch(Pitch() + delta).
	//
	// Parameters:
	//   - delta: the amount to change the pitch by, in radians
	AddPitch(delta float32)

	// SetYaw applies whichever yaw bounds are set and recomputes the eye.
	// Yaw is unconstrained by default, allowing a full orbit.
	//
	// Parameters:
	//   - yaw: the new yaw in radians
	SetYaw(yaw float32)

	// AddYaw is SetYaw(Yaw() + delta).
	//
	// Parameters:
	//   - delta: the amount to change the yaw by, in radians
	AddYaw(delta float32)

	// SetTarget moves the look-at point and recomputes the eye around it.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// SetAspect sets the aspect ratio, typically after a window resize.
	//
	// Parameters:
	//   - aspect: the aspect ratio (width / height)
	SetAspect(aspect float32)

	// SetBounds replaces the bounds and re-clamps distance, pitch and yaw against them.
	//
	// Parameters:
	//   - bounds: the new bounds
	SetBounds(bounds OrbitCameraBounds)

	// Update recomputes the eye from the current distance, pitch and yaw.
	// Every mutator already calls it; calling it again is a no-op.
	Update()

	// ViewMatrix returns the right-handed look-at matrix for the current eye.
	//
	// Returns:
	//   - [16]float32: the view matrix (column-major)
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the right-handed perspective matrix with WebGPU depth range [0, 1].
	//
	// Returns:
	//   - [16]float32: the projection matrix (column-major)
	ProjectionMatrix() [16]float32

	// BuildViewProjectionMatrix returns projection * view for the current state.
	// It has no side effects.
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix (column-major)
	BuildViewProjectionMatrix() [16]float32
}

var _ OrbitCamera = &orbitCameraImpl{}

// NewOrbitCamera creates an OrbitCamera around target with the default bounds, a PI/2
// field of view, a 0.1 near plane and a 1000 far plane. Options are applied before the
// initial distance, pitch and yaw are clamped, so custom bounds take effect immediately.
//
// Parameters:
//   - distance: distance from the eye to the target
//   - pitch: vertical angle in radians
//   - yaw: horizontal angle in radians
//   - target: the point around which the camera rotates
//   - aspect: viewport aspect ratio (width / height)
//   - options: functional options to configure the camera
//
// Returns:
//   - OrbitCamera: the newly created camera with its eye computed
func NewOrbitCamera(distance, pitch, yaw float32, target [3]float32, aspect float32, options ...OrbitCameraOption) OrbitCamera {
	c := &orbitCameraImpl{
		mu:     &sync.Mutex{},
		target: target,
		up:     [3]float32{0, 1, 0},
		bounds: DefaultOrbitCameraBounds(),
		aspect: aspect,
		fov:    math.Pi / 2,
		near:   0.1,
		far:    1000.0,
	}
	for _, option := range options {
		option(c)
	}

	c.distance = c.bounds.ClampDistance(distance)
	c.pitch = c.bounds.ClampPitch(pitch)
	c.yaw = c.bounds.ClampYaw(yaw)
	c.update()
	return c
}

// update recomputes the eye from spherical coordinates.
// Caller must hold the mutex.
func (c *orbitCameraImpl) update() {
	offset := common.SphericalToCartesian(c.distance, c.pitch, c.yaw)
	c.eye[0] = c.target[0] + offset[0]
	c.eye[1] = c.target[1] + offset[1]
	c.eye[2] = c.target[2] + offset[2]
}

func (c *orbitCameraImpl) setDistance(distance float32) {
	c.distance = c.bounds.ClampDistance(distance)
	c.update()
}

func (c *orbitCameraImpl) setPitch(pitch float32) {
	c.pitch = c.bounds.ClampPitch(pitch)
	c.update()
}

func (c *orbitCameraImpl) setYaw(yaw float32) {
	c.yaw = c.bounds.ClampYaw(yaw)
	c.update()
}

func (c *orbitCameraImpl) viewMatrix() [16]float32 {
	var view [16]float32
	common.LookAt(view[:],
		c.eye[0], c.eye[1], c.eye[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	return view
}

func (c *orbitCameraImpl) projectionMatrix() [16]float32 {
	var proj [16]float32
	common.Perspective(proj[:], c.fov, c.aspect, c.near, c.far)
	return proj
}

func (c *orbitCameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

func (c *orbitCameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *orbitCameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *orbitCameraImpl) Eye() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye[0], c.eye[1], c.eye[2]
}

func (c *orbitCameraImpl) EyeOffset() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [3]float32{
		c.eye[0] - c.target[0],
		c.eye[1] - c.target[1],
		c.eye[2] - c.target[2],
	}
}

func (c *orbitCameraImpl) Target() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target[0], c.target[1], c.target[2]
}

func (c *orbitCameraImpl) Up() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *orbitCameraImpl) Bounds() OrbitCameraBounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

func (c *orbitCameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *orbitCameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *orbitCameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *orbitCameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *orbitCameraImpl) SetDistance(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDistance(distance)
}

func (c *orbitCameraImpl) AddDistance(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDistance(c.distance + delta)
}

func (c *orbitCameraImpl) SetPitch(pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPitch(pitch)
}

func (c *orbitCameraImpl) AddPitch(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPitch(c.pitch + delta)
}

func (c *orbitCameraImpl) SetYaw(yaw float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setYaw(yaw)
}

func (c *orbitCameraImpl) AddYaw(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setYaw(c.yaw + delta)
}

func (c *orbitCameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.update()
}

func (c *orbitCameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *orbitCameraImpl) SetBounds(bounds OrbitCameraBounds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bounds = bounds
	c.distance = c.bounds.ClampDistance(c.distance)
	c.pitch = c.bounds.ClampPitch(c.pitch)
	c.yaw = c.bounds.ClampYaw(c.yaw)
	c.update()
}

func (c *orbitCameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update()
}

func (c *orbitCameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix()
}

func (c *orbitCameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix()
}

func (c *orbitCameraImpl) BuildViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := c.viewMatrix()
	proj := c.projectionMatrix()
	var viewProj [16]float32
	common.Mul4(viewProj[:], proj[:], view[:])
	return viewProj
}
