package camera

import "github.com/tanema/gween/ease"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRotateSpeed sets the radians applied per unit of mouse motion.
//
// Parameters:
//   - speed: rotation speed
//
// Returns:
//   - CameraControllerOption: functional option to set the rotate speed
func WithRotateSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateSpeed = speed
	}
}

// WithZoomSpeed sets the distance applied per unit of scroll.
//
// Parameters:
//   - speed: multiplier for scroll input
//
// Returns:
//   - CameraControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithZoomEasing eases each scroll step over duration seconds using easeFn.
// A zero duration disables easing. A nil easeFn keeps the default (OutCubic).
//
// Parameters:
//   - duration: seconds each zoom step takes
//   - easeFn: the easing curve
//
// Returns:
//   - CameraControllerOption: functional option to enable eased zoom
func WithZoomEasing(duration float32, easeFn ease.TweenFunc) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomDuration = duration
		if easeFn != nil {
			cc.zoomEase = easeFn
		}
	}
}
