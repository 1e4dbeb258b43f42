package wgpudriver

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/glsl"
)

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// glslVertexFormatMap maps GLSL attribute types to their corresponding wgpu vertex format and byte size
var glslVertexFormatMap = map[string]vertexFormatInfo{
	"float": {wgpu.VertexFormatFloat32, 4},
	"vec2":  {wgpu.VertexFormatFloat32x2, 8},
	"vec3":  {wgpu.VertexFormatFloat32x3, 12},
	"vec4":  {wgpu.VertexFormatFloat32x4, 16},
	"int":   {wgpu.VertexFormatSint32, 4},
	"ivec2": {wgpu.VertexFormatSint32x2, 8},
	"ivec3": {wgpu.VertexFormatSint32x3, 12},
	"ivec4": {wgpu.VertexFormatSint32x4, 16},
	"uint":  {wgpu.VertexFormatUint32, 4},
	"uvec2": {wgpu.VertexFormatUint32x2, 8},
	"uvec3": {wgpu.VertexFormatUint32x3, 12},
	"uvec4": {wgpu.VertexFormatUint32x4, 16},
}

// buildVertexBufferLayout constructs a single interleaved wgpu.VertexBufferLayout from the vertex
// stage inputs. Attributes are packed in location order with sequential byte offsets, and the
// array stride is the sum of their sizes.
//
// Parameters:
//   - attrs: the vertex inputs as returned by glsl.VertexAttributes
//
// Returns:
//   - wgpu.VertexBufferLayout: the constructed vertex buffer layout
//   - error: an error naming the first attribute whose type has no vertex format
func buildVertexBufferLayout(attrs []glsl.Variable) (wgpu.VertexBufferLayout, error) {
	out := make([]wgpu.VertexAttribute, 0, len(attrs))
	var offset uint64

	for _, a := range attrs {
		info, ok := glslVertexFormatMap[a.Type]
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex input `%s' has type `%s' which has no vertex format", a.Name, a.Type)
		}

		out = append(out, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(a.Location),
		})
		offset += info.size
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  out,
	}, nil
}
