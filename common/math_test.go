package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func identity() []float32 {
	m := make([]float32, 16)
	Identity(m)
	return m
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp[float32](5, -1, 1))
	assert.Equal(t, float32(-1), Clamp[float32](-5, -1, 1))
	assert.Equal(t, float32(0.5), Clamp[float32](0.5, -1, 1))
	assert.Equal(t, 3, Clamp(3, 3, 2), "lower bound wins when bounds cross")
	assert.Equal(t, float32(-1), Clamp(float32(math.NaN()), -1, 1), "NaN maps to the lower bound")
	assert.Equal(t, -2.0, Clamp(math.NaN(), -2, 2))
	assert.Equal(t, float32(1), Clamp(float32(math.Inf(1)), -1, 1))
}

func TestMul4Identity(t *testing.T) {
	a := make([]float32, 16)
	for i := range a {
		a[i] = float32(i + 1)
	}
	out := make([]float32, 16)

	Mul4(out, identity(), a)
	assert.Equal(t, a, out)

	Mul4(out, a, identity())
	assert.Equal(t, a, out)
}

func TestMul4AliasedOutput(t *testing.T) {
	a := identity()
	a[12], a[13], a[14] = 1, 2, 3 // translation
	b := identity()
	b[12] = 10

	Mul4(a, a, b)
	assert.InDelta(t, 11, a[12], tol)
	assert.InDelta(t, 2, a[13], tol)
	assert.InDelta(t, 3, a[14], tol)
}

func TestLookAtFromPositiveZ(t *testing.T) {
	view := make([]float32, 16)
	LookAt(view, 0, 0, 1, 0, 0, 0, 0, 1, 0)

	origin := TransformPoint(view, 0, 0, 0)
	assert.InDelta(t, 0, origin[0], tol)
	assert.InDelta(t, 0, origin[1], tol)
	assert.InDelta(t, -1, origin[2], tol, "target sits one unit down -Z in view space")
	assert.InDelta(t, 1, origin[3], tol)

	eye := TransformPoint(view, 0, 0, 1)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, eye[i], tol, "eye maps to the view-space origin")
	}
}

func TestLookAtDegenerateEyeOnTarget(t *testing.T) {
	view := make([]float32, 16)
	LookAt(view, 0, 0, 0, 0, 0, 0, 0, 1, 0)
	for _, v := range view {
		assert.False(t, math.IsNaN(float64(v)))
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := make([]float32, 16)
	Perspective(proj, math.Pi/2, 1, 0.1, 1000)

	near := TransformPoint(proj, 0, 0, -0.1)
	require.NotZero(t, near[3])
	assert.InDelta(t, 0, near[2]/near[3], tol, "near plane maps to depth 0")

	far := TransformPoint(proj, 0, 0, -1000)
	assert.InDelta(t, 1, far[2]/far[3], 1e-3, "far plane maps to depth 1")

	edge := TransformPoint(proj, 1, 0, -1)
	assert.InDelta(t, 1, edge[0]/edge[3], tol, "a 90 degree fov puts x=-z on the clip edge")
}

func TestBuildModelMatrixTranslationOnly(t *testing.T) {
	m := make([]float32, 16)
	BuildModelMatrix(m, 1, 2, 3, 0, 0, 0, 1, 1, 1)

	p := TransformPoint(m, 0.5, 0.5, 0.5)
	assert.InDelta(t, 1.5, p[0], tol)
	assert.InDelta(t, 2.5, p[1], tol)
	assert.InDelta(t, 3.5, p[2], tol)
	assert.InDelta(t, 1, p[3], tol)
}

func TestSphericalToCartesian(t *testing.T) {
	tests := []struct {
		name            string
		distance, pitch float32
		yaw             float32
		want            [3]float32
	}{
		{"forward", 1, 0, 0, [3]float32{0, 0, 1}},
		{"quarter yaw", 2, 0, math.Pi / 2, [3]float32{2, 0, 0}},
		{"half yaw", 1, 0, math.Pi, [3]float32{0, 0, -1}},
		{"near pole", 3, math.Pi / 2, 0, [3]float32{0, 3, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SphericalToCartesian(tt.distance, tt.pitch, tt.yaw)
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], tol)
			}
		})
	}
}

func TestSphericalToCartesianPreservesDistance(t *testing.T) {
	for _, pitch := range []float32{-1.2, -0.3, 0, 0.7, 1.5} {
		for _, yaw := range []float32{-3, -1, 0, 2, 6} {
			v := SphericalToCartesian(4, pitch, yaw)
			length := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))
			assert.InDelta(t, 4, length, 1e-4)
		}
	}
}
