package renderer

import (
	_ "embed"
	"strings"

	"github.com/Carmen-Shannon/oxy-voxel/engine/camera"
	"github.com/Carmen-Shannon/oxy-voxel/engine/instance"
)

//go:embed assets/voxel.wgsl
var voxelShaderBody string

const (
	// VertexEntryPoint is the vertex stage entry point of the voxel shader.
	VertexEntryPoint = "vs_main"
	// FragmentEntryPoint is the fragment stage entry point of the voxel shader.
	FragmentEntryPoint = "fs_main"
)

// VoxelShaderSource returns the complete WGSL module for the voxel pipeline. The struct
// definitions come from the packages that own the matching Go layouts, so the shader and
// the marshalled buffers cannot drift apart.
//
// Returns:
//   - string: the WGSL source
func VoxelShaderSource() string {
	var sb strings.Builder
	for _, part := range []string{
		camera.GPUCameraUniformSource,
		instance.GPUInstanceSource,
		voxelShaderBody,
	} {
		sb.WriteString(strings.TrimSpace(part))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
