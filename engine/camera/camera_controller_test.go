package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

func TestCameraControllerDefaults(t *testing.T) {
	cc := NewCameraController()
	assert.Equal(t, float32(0.005), cc.RotateSpeed())
	assert.Equal(t, float32(0.1), cc.ZoomSpeed())
	assert.Zero(t, cc.ZoomDuration())
	assert.False(t, cc.IsDragRotate())
	assert.False(t, cc.Zooming())
}

func TestMouseMotionGatedByDrag(t *testing.T) {
	cam := NewOrbitCamera(2, 0, 0, [3]float32{}, 1)
	cc := NewCameraController(WithRotateSpeed(0.01))

	assert.False(t, cc.ProcessMouseMotion(cam, 10, 10))
	assert.Equal(t, float32(0), cam.Yaw())
	assert.Equal(t, float32(0), cam.Pitch())

	cc.SetDragRotate(true)
	assert.True(t, cc.ProcessMouseMotion(cam, 10, 20))
	assert.InDelta(t, -0.1, cam.Yaw(), tol)
	assert.InDelta(t, 0.2, cam.Pitch(), tol)

	cc.SetDragRotate(false)
	assert.False(t, cc.ProcessMouseMotion(cam, 10, 20))
	assert.InDelta(t, -0.1, cam.Yaw(), tol)
}

func TestMouseMotionRespectsPitchBounds(t *testing.T) {
	cam := NewOrbitCamera(2, 0, 0, [3]float32{}, 1)
	cc := NewCameraController()
	cc.SetDragRotate(true)

	cc.ProcessMouseMotion(cam, 0, 1e6)
	assert.Equal(t, cam.Bounds().MaxPitch, cam.Pitch())
	cc.ProcessMouseMotion(cam, 0, -1e6)
	assert.Equal(t, cam.Bounds().MinPitch, cam.Pitch())
}

func TestScrollZoomsImmediately(t *testing.T) {
	cam := NewOrbitCamera(2, 0, 0, [3]float32{}, 1,
		WithBounds(OrbitCameraBounds{MinDistance: Bound(1.1), MinPitch: -1, MaxPitch: 1}),
	)
	cc := NewCameraController(WithZoomSpeed(0.5))

	cc.ProcessScroll(cam, 1)
	assert.InDelta(t, 1.5, cam.Distance(), tol)
	cc.ProcessScroll(cam, -2)
	assert.InDelta(t, 2.5, cam.Distance(), tol)

	// scroll ignores the drag gate
	cc.ProcessScroll(cam, 100)
	assert.Equal(t, float32(1.1), cam.Distance())
	assert.False(t, cc.Zooming())
}

func TestScrollEasedZoom(t *testing.T) {
	cam := NewOrbitCamera(2, 0, 0, [3]float32{}, 1)
	cc := NewCameraController(WithZoomSpeed(1), WithZoomEasing(0.5, ease.Linear))

	cc.ProcessScroll(cam, 1)
	require.True(t, cc.Zooming())
	assert.Equal(t, float32(2), cam.Distance(), "eased zoom does not jump")

	cc.Update(cam, 0.25)
	assert.InDelta(t, 1.5, cam.Distance(), 1e-3)
	assert.True(t, cc.Zooming())

	cc.Update(cam, 0.5)
	assert.Equal(t, float32(1), cam.Distance())
	assert.False(t, cc.Zooming())

	// nothing in flight
	cc.Update(cam, 1)
	assert.Equal(t, float32(1), cam.Distance())
}

func TestScrollEasedZoomAccumulatesGoal(t *testing.T) {
	cam := NewOrbitCamera(4, 0, 0, [3]float32{}, 1)
	cc := NewCameraController(WithZoomSpeed(1), WithZoomEasing(0.2, nil))

	cc.ProcessScroll(cam, 1)
	cc.Update(cam, 0.05)
	cc.ProcessScroll(cam, 1)
	cc.Update(cam, 1)
	assert.Equal(t, float32(2), cam.Distance())
}

func TestScrollEasedZoomClampsGoal(t *testing.T) {
	cam := NewOrbitCamera(2, 0, 0, [3]float32{}, 1,
		WithBounds(OrbitCameraBounds{MinDistance: Bound(1.1), MinPitch: -1, MaxPitch: 1}),
	)
	cc := NewCameraController(WithZoomSpeed(1), WithZoomEasing(0.1, nil))

	cc.ProcessScroll(cam, 10)
	cc.Update(cam, 1)
	assert.Equal(t, float32(1.1), cam.Distance())
}

func TestCancelZoom(t *testing.T) {
	cam := NewOrbitCamera(3, 0, 0, [3]float32{}, 1)
	cc := NewCameraController(WithZoomSpeed(1), WithZoomEasing(1, ease.Linear))

	cc.ProcessScroll(cam, 1)
	cc.Update(cam, 0.5)
	cc.CancelZoom()
	assert.False(t, cc.Zooming())

	d := cam.Distance()
	cc.Update(cam, 1)
	assert.Equal(t, d, cam.Distance())
}
