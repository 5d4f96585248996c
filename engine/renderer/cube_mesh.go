package renderer

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultCubeHalfExtent sizes the cube so neighbours on a 0.2 grid leave a visible gap.
const DefaultCubeHalfExtent float32 = 0.05

// GPUVertex is the GPU-aligned representation of a single cube vertex.
// Size: 24 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: model-space position (location 0)
	Color    [3]float32 // offset 12: face colour (location 1)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// VertexBufferLayout describes GPUVertex to the render pipeline.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 24,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// cubeFace is one side of the cube: its outward normal and two in-plane axes with u x v = normal.
type cubeFace struct {
	normal [3]float32
	u, v   [3]float32
	color  [3]float32
}

var cubeFaces = [6]cubeFace{
	{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}, color: [3]float32{0.9, 0.3, 0.3}},
	{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}, color: [3]float32{0.5, 0.1, 0.1}},
	{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}, color: [3]float32{0.3, 0.9, 0.3}},
	{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}, color: [3]float32{0.1, 0.5, 0.1}},
	{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}, color: [3]float32{0.3, 0.3, 0.9}},
	{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}, color: [3]float32{0.1, 0.1, 0.5}},
}

// NewCubeMesh builds an axis-aligned cube centred on the origin with one flat colour per
// face. Each face has its own four vertices so colours do not bleed across edges, and its
// two triangles wind counter-clockwise when seen from outside.
//
// Parameters:
//   - halfExtent: half the cube's edge length
//
// Returns:
//   - []GPUVertex: 24 vertices
//   - []uint32: 36 indices
func NewCubeMesh(halfExtent float32) ([]GPUVertex, []uint32) {
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range cubeFaces {
		base := uint32(len(vertices))
		for _, c := range corners {
			var p [3]float32
			for axis := range 3 {
				p[axis] = (f.normal[axis] + c[0]*f.u[axis] + c[1]*f.v[axis]) * halfExtent
			}
			vertices = append(vertices, GPUVertex{Position: p, Color: f.color})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
