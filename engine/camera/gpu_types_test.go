package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUCameraUniformLayout(t *testing.T) {
	var u GPUCameraUniform
	assert.Equal(t, 80, u.Size())
	assert.Contains(t, GPUCameraUniformSource, "view_proj: mat4x4<f32>")
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	cam := NewOrbitCamera(1, 0, 0, [3]float32{0, 1, 0}, 1)
	u := NewGPUCameraUniform(cam)
	buf := u.Marshal()
	require.Len(t, buf, 80)

	vp := cam.BuildViewProjectionMatrix()
	for i := range 16 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, vp[i], got)
	}
	x, y, z := cam.Eye()
	assert.Equal(t, x, math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])))
	assert.Equal(t, y, math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))
	assert.Equal(t, z, math.Float32frombits(binary.LittleEndian.Uint32(buf[72:])))
	assert.Zero(t, binary.LittleEndian.Uint32(buf[76:]))
}
