package instance

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUInstanceSource is the canonical WGSL definition of the InstanceInput struct.
// Matches GPUInstance layout exactly (64 bytes, four vec4 columns at locations 5-8).
//
//go:embed assets/instance.wgsl
var GPUInstanceSource string

// InstanceShaderLocation is the first shader location used by the per-instance model matrix.
// Locations below it are left to the mesh's per-vertex attributes.
const InstanceShaderLocation = 5

// GPUInstance is the GPU-aligned representation of one instance's model matrix.
// Size: 64 bytes (mat4x4<f32> split into four vec4<f32> vertex attributes).
type GPUInstance struct {
	Model [16]float32 // offset 0: column-major model-to-world transform
}

// NewGPUInstance converts an Instance into its GPU form.
func NewGPUInstance(i Instance) GPUInstance {
	return GPUInstance{Model: i.ModelMatrix()}
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUInstance) Marshal() []byte {
	buf := make([]byte, 64)
	g.marshalInto(buf)
	return buf
}

func (g *GPUInstance) marshalInto(buf []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
}

// VertexBufferLayout describes the instance buffer to the render pipeline: one GPUInstance
// per instance, read as four Float32x4 columns starting at InstanceShaderLocation.
//
// Returns:
//   - wgpu.VertexBufferLayout: the instance-step buffer layout
func VertexBufferLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 4)
	for col := range attrs {
		attrs[col] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(col * 16),
			ShaderLocation: uint32(InstanceShaderLocation + col),
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: 64,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
