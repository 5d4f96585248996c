package camera

import (
	"sync"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraController turns pre-extracted input deltas into OrbitCamera mutations.
// Mouse motion only rotates the camera while the drag gate is held; scroll always zooms.
type CameraController interface {
	// RotateSpeed returns the radians applied per unit of mouse motion.
	//
	// Returns:
	//   - float32: rotation speed
	RotateSpeed() float32

	// ZoomSpeed returns the distance applied per unit of scroll.
	//
	// Returns:
	//   - float32: zoom speed
	ZoomSpeed() float32

	// ZoomDuration returns how long a scroll step is eased over, in seconds.
	// Zero applies scroll steps immediately.
	//
	// Returns:
	//   - float32: the easing duration in seconds
	ZoomDuration() float32

	// IsDragRotate reports whether the drag gate is currently held.
	//
	// Returns:
	//   - bool: true while the rotate button is pressed
	IsDragRotate() bool

	// SetDragRotate opens or closes the drag gate, typically on mouse press/release.
	//
	// Parameters:
	//   - pressed: true while the rotate button is held
	SetDragRotate(pressed bool)

	// ProcessMouseMotion rotates cam by the given deltas when the drag gate is held.
	// Horizontal motion decreases yaw and vertical motion increases pitch.
	//
	// Parameters:
	//   - cam: the camera to rotate
	//   - dx, dy: signed mouse deltas
	//
	// Returns:
	//   - bool: true if the deltas were applied
	ProcessMouseMotion(cam OrbitCamera, dx, dy float32) bool

	// ProcessScroll zooms cam by a scroll delta. Positive deltas (scroll up) move the eye closer.
	//
	// Parameters:
	//   - cam: the camera to zoom
	//   - delta: signed scroll delta in lines or pixels
	ProcessScroll(cam OrbitCamera, delta float32)

	// Update advances an in-flight eased zoom by dt seconds. No-op when nothing is easing.
	//
	// Parameters:
	//   - cam: the camera being zoomed
	//   - dt: elapsed seconds since the last update
	Update(cam OrbitCamera, dt float32)

	// CancelZoom drops any eased zoom in flight, leaving the distance where it is.
	CancelZoom()

	// Zooming reports whether an eased zoom is still in flight.
	//
	// Returns:
	//   - bool: true while a zoom tween is running
	Zooming() bool
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	rotateSpeed  float32
	zoomSpeed    float32
	zoomDuration float32
	zoomEase     ease.TweenFunc

	dragRotate bool

	zoomTween *gween.Tween
	zoomGoal  float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller with a 0.005 rad rotate speed, a 0.1 zoom speed
// and immediate (un-eased) zoom.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		rotateSpeed: 0.005,
		zoomSpeed:   0.1,
		zoomEase:    ease.OutCubic,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) RotateSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotateSpeed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) ZoomDuration() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomDuration
}

func (cc *cameraControllerImpl) IsDragRotate() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dragRotate
}

func (cc *cameraControllerImpl) SetDragRotate(pressed bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dragRotate = pressed
}

func (cc *cameraControllerImpl) ProcessMouseMotion(cam OrbitCamera, dx, dy float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.dragRotate {
		return false
	}
	cam.AddYaw(-dx * cc.rotateSpeed)
	cam.AddPitch(dy * cc.rotateSpeed)
	return true
}

func (cc *cameraControllerImpl) ProcessScroll(cam OrbitCamera, delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	step := -delta * cc.zoomSpeed
	if cc.zoomDuration <= 0 {
		cam.AddDistance(step)
		return
	}

	// Successive scroll steps accumulate onto the pending goal rather than the
	// partially eased distance.
	from := cam.Distance()
	goal := from + step
	if cc.zoomTween != nil {
		goal = cc.zoomGoal + step
	}
	goal = cam.Bounds().ClampDistance(goal)
	cc.zoomGoal = goal
	cc.zoomTween = gween.New(from, goal, cc.zoomDuration, cc.zoomEase)
}

func (cc *cameraControllerImpl) Update(cam OrbitCamera, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.zoomTween == nil {
		return
	}
	current, finished := cc.zoomTween.Update(dt)
	if finished {
		current = cc.zoomGoal
		cc.zoomTween = nil
	}
	cam.SetDistance(current)
}

func (cc *cameraControllerImpl) CancelZoom() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoomTween = nil
}

func (cc *cameraControllerImpl) Zooming() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomTween != nil
}
