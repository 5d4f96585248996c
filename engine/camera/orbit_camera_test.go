package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-voxel/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func assertEyeMatchesSpherical(t *testing.T, c OrbitCamera) {
	t.Helper()
	want := common.SphericalToCartesian(c.Distance(), c.Pitch(), c.Yaw())
	tx, ty, tz := c.Target()
	x, y, z := c.Eye()
	assert.InDelta(t, want[0]+tx, x, tol)
	assert.InDelta(t, want[1]+ty, y, tol)
	assert.InDelta(t, want[2]+tz, z, tol)
}

func TestNewOrbitCameraDefaults(t *testing.T) {
	c := NewOrbitCamera(2, 0.5, 1.25, [3]float32{}, 16.0/9.0)

	assert.Equal(t, float32(2), c.Distance())
	assert.Equal(t, float32(0.5), c.Pitch())
	assert.Equal(t, float32(1.25), c.Yaw())
	assert.InDelta(t, math.Pi/2, c.Fov(), tol)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(1000), c.Far())
	assert.Equal(t, float32(16.0/9.0), c.Aspect())

	ux, uy, uz := c.Up()
	assert.Equal(t, [3]float32{0, 1, 0}, [3]float32{ux, uy, uz})

	b := c.Bounds()
	assert.Nil(t, b.MinDistance)
	assert.Nil(t, b.MaxDistance)
	assert.Nil(t, b.MinYaw)
	assert.Nil(t, b.MaxYaw)
	assert.Less(t, float64(b.MaxPitch), math.Pi/2)
	assert.Greater(t, float64(b.MinPitch), -math.Pi/2)

	assertEyeMatchesSpherical(t, c)
}

func TestNewOrbitCameraClampsInitialValues(t *testing.T) {
	c := NewOrbitCamera(0.5, 3, 0, [3]float32{}, 1,
		WithBounds(OrbitCameraBounds{
			MinDistance: Bound(1.1),
			MinPitch:    -1,
			MaxPitch:    1,
		}),
	)
	assert.Equal(t, float32(1.1), c.Distance())
	assert.Equal(t, float32(1), c.Pitch())
	assertEyeMatchesSpherical(t, c)
}

func TestSetDistanceClamps(t *testing.T) {
	tests := []struct {
		name   string
		bounds OrbitCameraBounds
		input  float32
		want   float32
	}{
		{"within default range", DefaultOrbitCameraBounds(), 5, 5},
		{"zero floors at epsilon", DefaultOrbitCameraBounds(), 0, common.Epsilon},
		{"negative floors at epsilon", DefaultOrbitCameraBounds(), -10, common.Epsilon},
		{"huge is unbounded by default", DefaultOrbitCameraBounds(), 1e30, 1e30},
		{"min distance", OrbitCameraBounds{MinDistance: Bound(1.1), MinPitch: -1, MaxPitch: 1}, 0.2, 1.1},
		{"max distance", OrbitCameraBounds{MaxDistance: Bound(10), MinPitch: -1, MaxPitch: 1}, 25, 10},
		{"non-positive min keeps epsilon floor", OrbitCameraBounds{MinDistance: Bound(-3), MinPitch: -1, MaxPitch: 1}, -1, common.Epsilon},
		{"positive min below epsilon is honoured", OrbitCameraBounds{MinDistance: Bound(1e-9), MinPitch: -1, MaxPitch: 1}, 0, 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera(2, 0, 0, [3]float32{}, 1, WithBounds(tt.bounds))
			c.SetDistance(tt.input)
			assert.Equal(t, tt.want, c.Distance())
			assert.Greater(t, c.Distance(), float32(0))
			assertEyeMatchesSpherical(t, c)
		})
	}
}

func TestNonFiniteInputsKeepCameraFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	c := NewOrbitCamera(nan, nan, nan, [3]float32{}, 1)
	assert.Equal(t, common.Epsilon, c.Distance())
	assert.Equal(t, c.Bounds().MinPitch, c.Pitch())
	assert.Equal(t, float32(0), c.Yaw())

	c.SetDistance(2)
	c.SetPitch(0.3)
	c.SetYaw(0.7)
	c.AddDistance(nan)
	c.AddPitch(nan)
	c.AddYaw(nan)
	assert.Equal(t, common.Epsilon, c.Distance())
	assert.Equal(t, c.Bounds().MinPitch, c.Pitch())
	assert.Equal(t, float32(0), c.Yaw())

	c.SetPitch(inf)
	assert.Equal(t, c.Bounds().MaxPitch, c.Pitch())
	c.SetYaw(-inf)
	assert.Equal(t, float32(0), c.Yaw())

	bounded := NewOrbitCamera(2, 0, 0, [3]float32{}, 1, WithBounds(OrbitCameraBounds{
		MinPitch: -1, MaxPitch: 1, MinYaw: Bound(0.25), MaxYaw: Bound(1),
	}))
	bounded.SetYaw(nan)
	assert.Equal(t, float32(0.25), bounded.Yaw())

	for _, cam := range []OrbitCamera{c, bounded} {
		x, y, z := cam.Eye()
		for _, v := range []float32{x, y, z} {
			assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
		}
		assertEyeMatchesSpherical(t, cam)
	}
}

func TestSetPitchClamps(t *testing.T) {
	c := NewOrbitCamera(2, 0, 0, [3]float32{}, 1)
	b := c.Bounds()

	for _, p := range []float32{-100, -math.Pi / 2, -1, 0, 1, math.Pi / 2, 100} {
		c.SetPitch(p)
		assert.GreaterOrEqual(t, c.Pitch(), b.MinPitch)
		assert.LessOrEqual(t, c.Pitch(), b.MaxPitch)
		assert.Less(t, math.Abs(float64(c.Pitch())), math.Pi/2)
		assertEyeMatchesSpherical(t, c)
	}

	c.SetPitch(0.3)
	assert.Equal(t, float32(0.3), c.Pitch())
}

func TestAddPitchSaturatesAtPole(t *testing.T) {
	c := NewOrbitCamera(2, 0, 0, [3]float32{}, 1)
	for range 1000 {
		c.AddPitch(0.01)
	}
	assert.Equal(t, c.Bounds().MaxPitch, c.Pitch())
	assert.Less(t, float64(c.Pitch()), math.Pi/2)
	assertEyeMatchesSpherical(t, c)
}

func TestSetYawIndependentBounds(t *testing.T) {
	t.Run("unbounded by default", func(t *testing.T) {
		c := NewOrbitCamera(1, 0, 0, [3]float32{}, 1)
		c.SetYaw(10 * math.Pi)
		assert.Equal(t, float32(10*math.Pi), c.Yaw())
		c.AddYaw(-20 * math.Pi)
		assert.InDelta(t, -10*math.Pi, c.Yaw(), tol)
	})

	t.Run("only min set", func(t *testing.T) {
		c := NewOrbitCamera(1, 0, 0, [3]float32{}, 1, WithBounds(OrbitCameraBounds{
			MinPitch: -1, MaxPitch: 1, MinYaw: Bound(-0.5),
		}))
		c.SetYaw(-2)
		assert.Equal(t, float32(-0.5), c.Yaw())
		c.SetYaw(50)
		assert.Equal(t, float32(50), c.Yaw())
	})

	t.Run("only max set", func(t *testing.T) {
		c := NewOrbitCamera(1, 0, 0, [3]float32{}, 1, WithBounds(OrbitCameraBounds{
			MinPitch: -1, MaxPitch: 1, MaxYaw: Bound(0.5),
		}))
		c.SetYaw(2)
		assert.Equal(t, float32(0.5), c.Yaw())
		c.SetYaw(-50)
		assert.Equal(t, float32(-50), c.Yaw())
	})

	t.Run("both set", func(t *testing.T) {
		c := NewOrbitCamera(1, 0, 0, [3]float32{}, 1, WithBounds(OrbitCameraBounds{
			MinPitch: -1, MaxPitch: 1, MinYaw: Bound(-0.5), MaxYaw: Bound(0.5),
		}))
		c.AddYaw(1)
		assert.Equal(t, float32(0.5), c.Yaw())
		c.AddYaw(-3)
		assert.Equal(t, float32(-0.5), c.Yaw())
		assertEyeMatchesSpherical(t, c)
	})
}

func TestAddDistanceRoundTrip(t *testing.T) {
	c := NewOrbitCamera(2, 0.4, 0.7, [3]float32{}, 1)
	for _, x := range []float32{0.25, 1, -0.5, 3} {
		c.AddDistance(x)
		c.AddDistance(-x)
		assert.InDelta(t, 2, c.Distance(), tol)
	}
	assertEyeMatchesSpherical(t, c)
}

func TestEyeConsistentAcrossMutatorSequence(t *testing.T) {
	c := NewOrbitCamera(2, 1.5, 1.25, [3]float32{}, 1,
		WithBounds(OrbitCameraBounds{
			MinDistance: Bound(1.1),
			MinPitch:    -math.Pi/2 + common.Epsilon,
			MaxPitch:    math.Pi/2 - common.Epsilon,
		}),
	)
	steps := []func(){
		func() { c.AddYaw(0.3) },
		func() { c.AddPitch(-0.9) },
		func() { c.AddDistance(-5) },
		func() { c.SetYaw(-2) },
		func() { c.SetPitch(3) },
		func() { c.SetDistance(42) },
		func() { c.Update() },
		func() { c.Update() },
	}
	for _, step := range steps {
		step()
		assertEyeMatchesSpherical(t, c)
	}
	assert.Equal(t, float32(42), c.Distance())
}

func TestUpdateIsIdempotent(t *testing.T) {
	c := NewOrbitCamera(3, 0.2, -0.8, [3]float32{1, 2, 3}, 1)
	x0, y0, z0 := c.Eye()
	c.Update()
	c.Update()
	x1, y1, z1 := c.Eye()
	assert.Equal(t, [3]float32{x0, y0, z0}, [3]float32{x1, y1, z1})
}

func TestEyeIsOffsetByTarget(t *testing.T) {
	c := NewOrbitCamera(1, 0, 0, [3]float32{1, 2, 3}, 1)

	x, y, z := c.Eye()
	assert.InDelta(t, 1, x, tol)
	assert.InDelta(t, 2, y, tol)
	assert.InDelta(t, 4, z, tol)

	off := c.EyeOffset()
	assert.InDelta(t, 0, off[0], tol)
	assert.InDelta(t, 0, off[1], tol)
	assert.InDelta(t, 1, off[2], tol)

	c.SetTarget(0, 0, 0)
	x, y, z = c.Eye()
	assert.InDelta(t, 0, x, tol)
	assert.InDelta(t, 0, y, tol)
	assert.InDelta(t, 1, z, tol)
}

func TestBuildViewProjectionMatrixRegression(t *testing.T) {
	c := NewOrbitCamera(1, 0, 0, [3]float32{}, 1)

	x, y, z := c.Eye()
	assert.InDelta(t, 0, x, tol)
	assert.InDelta(t, 0, y, tol)
	assert.InDelta(t, 1, z, tol)

	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	var want [16]float32
	common.Mul4(want[:], proj[:], view[:])
	vp := c.BuildViewProjectionMatrix()
	assert.Equal(t, want, vp)

	// The origin sits straight ahead, one unit down -Z in view space.
	origin := common.TransformPoint(view[:], 0, 0, 0)
	assert.InDelta(t, 0, origin[0], tol)
	assert.InDelta(t, 0, origin[1], tol)
	assert.InDelta(t, -1, origin[2], tol)

	// ...and projects onto the center of the screen.
	clip := common.TransformPoint(vp[:], 0, 0, 0)
	require.Greater(t, clip[3], float32(0))
	assert.InDelta(t, 0, clip[0]/clip[3], tol)
	assert.InDelta(t, 0, clip[1]/clip[3], tol)
	ndcZ := clip[2] / clip[3]
	assert.GreaterOrEqual(t, ndcZ, float32(0))
	assert.LessOrEqual(t, ndcZ, float32(1))
}

func TestBuildViewProjectionMatrixHasNoSideEffects(t *testing.T) {
	c := NewOrbitCamera(2, 0.3, 0.6, [3]float32{}, 1.5)
	first := c.BuildViewProjectionMatrix()
	second := c.BuildViewProjectionMatrix()
	assert.Equal(t, first, second)
	assert.Equal(t, float32(2), c.Distance())
	assert.Equal(t, float32(0.3), c.Pitch())
	assert.Equal(t, float32(0.6), c.Yaw())
}

func TestSetAspectChangesProjectionOnly(t *testing.T) {
	c := NewOrbitCamera(2, 0, 0, [3]float32{}, 1)
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()

	c.SetAspect(2)
	assert.Equal(t, view, c.ViewMatrix())
	assert.InDelta(t, proj[0]/2, c.ProjectionMatrix()[0], tol)
	assert.Equal(t, proj[5], c.ProjectionMatrix()[5])
}

func TestSetBoundsReclamps(t *testing.T) {
	c := NewOrbitCamera(50, 1.2, 3, [3]float32{}, 1)
	c.SetBounds(OrbitCameraBounds{
		MaxDistance: Bound(10),
		MinPitch:    -0.5,
		MaxPitch:    0.5,
		MaxYaw:      Bound(1),
	})
	assert.Equal(t, float32(10), c.Distance())
	assert.Equal(t, float32(0.5), c.Pitch())
	assert.Equal(t, float32(1), c.Yaw())
	assertEyeMatchesSpherical(t, c)
}

func TestOrbitCameraOptions(t *testing.T) {
	c := NewOrbitCamera(1, 0, 0, [3]float32{}, 1,
		WithFov(math.Pi/3),
		WithNear(0.5),
		WithFar(200),
		WithUp(0, 0, 1),
	)
	assert.InDelta(t, math.Pi/3, c.Fov(), tol)
	assert.Equal(t, float32(0.5), c.Near())
	assert.Equal(t, float32(200), c.Far())
	ux, uy, uz := c.Up()
	assert.Equal(t, [3]float32{0, 0, 1}, [3]float32{ux, uy, uz})
}
