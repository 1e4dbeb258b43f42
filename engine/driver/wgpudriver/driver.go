// Package wgpudriver implements shader.Driver on WebGPU. Stages become GLSL shader modules and a
// link becomes a render pipeline whose vertex buffer layout is derived from the vertex stage's
// inputs. The device is headless: no surface is created.
package wgpudriver

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/engine/glsl"
	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

// stageModule is a compiled stage: the shader module plus the parsed source the pipeline
// layout is derived from.
type stageModule struct {
	stage  shader.Stage
	module *wgpu.ShaderModule
	unit   *glsl.Unit
}

// Driver is the WebGPU implementation of shader.Driver.
type Driver struct {
	label                string
	forceFallbackAdapter bool
	targetFormat         wgpu.TextureFormat

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device

	next      shader.Handle
	modules   map[shader.Handle]stageModule
	pipelines map[shader.Handle]*wgpu.RenderPipeline
	active    shader.Handle
}

var _ shader.Driver = &Driver{}

// wgpuStages maps a stage to the shader stage flag naga compiles GLSL for.
var wgpuStages = map[shader.Stage]wgpu.ShaderStage{
	shader.StageVertex:   wgpu.ShaderStageVertex,
	shader.StageFragment: wgpu.ShaderStageFragment,
}

// New creates a WebGPU instance, requests an adapter and a device, and returns a driver ready to
// compile stages. Release must be called when the driver is no longer needed.
//
// Parameters:
//   - options: functional options configuring adapter selection, target format and labels
//
// Returns:
//   - *Driver: the driver
//   - error: an error if no adapter or device could be obtained
func New(options ...DriverBuilderOption) (*Driver, error) {
	d := &Driver{
		label:        "oxy-gl",
		targetFormat: wgpu.TextureFormatRGBA8Unorm,
		modules:      make(map[shader.Handle]stageModule),
		pipelines:    make(map[shader.Handle]*wgpu.RenderPipeline),
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request WebGPU adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label + " Device",
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request WebGPU device: %w", err)
	}
	d.device = dev

	shader.Logger().Info("WebGPU driver ready", "fallback", d.forceFallbackAdapter)
	return d, nil
}

func (d *Driver) CompileStage(source string, stage shader.Stage) (shader.Handle, error) {
	wgpuStage, ok := wgpuStages[stage]
	if !ok {
		return 0, fmt.Errorf("invalid shader stage %s", stage)
	}

	unit, err := glsl.Parse(source)
	if err != nil {
		var se *glsl.SyntaxError
		if errors.As(err, &se) {
			return 0, errors.New(shader.BoundDiagnostic(fmt.Sprintf("0:%d(%d): error: %s", se.Line, se.Column, se.Msg)))
		}
		return 0, errors.New(shader.BoundDiagnostic(err.Error()))
	}

	h := d.allocate()
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fmt.Sprintf("%s %s Shader %d", d.label, stage, h),
		GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
			Code:        source,
			ShaderStage: wgpuStage,
		},
	})
	if err != nil {
		return 0, errors.New(shader.BoundDiagnostic(err.Error()))
	}

	d.modules[h] = stageModule{stage: stage, module: m, unit: unit}
	return h, nil
}

func (d *Driver) LinkProgram(vertex, fragment shader.Handle) (shader.Handle, error) {
	vs, ok := d.modules[vertex]
	if !ok || vs.stage != shader.StageVertex {
		return 0, fmt.Errorf("%d is not a compiled vertex shader", vertex)
	}
	fs, ok := d.modules[fragment]
	if !ok || fs.stage != shader.StageFragment {
		return 0, fmt.Errorf("%d is not a compiled fragment shader", fragment)
	}

	var buffers []wgpu.VertexBufferLayout
	if attrs := glsl.VertexAttributes(vs.unit); len(attrs) > 0 {
		layout, err := buildVertexBufferLayout(attrs)
		if err != nil {
			return 0, errors.New(shader.BoundDiagnostic(err.Error()))
		}
		buffers = append(buffers, layout)
	}

	h := d.allocate()
	// a nil Layout lets the implementation derive bind group layouts from the modules
	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: fmt.Sprintf("%s Render Pipeline %d", d.label, h),
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: "main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: "main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    d.targetFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return 0, errors.New(shader.BoundDiagnostic(err.Error()))
	}

	d.pipelines[h] = p
	return h, nil
}

func (d *Driver) DeleteStage(h shader.Handle) {
	if m, ok := d.modules[h]; ok {
		m.module.Release()
		delete(d.modules, h)
	}
}

func (d *Driver) DeleteProgram(h shader.Handle) {
	if p, ok := d.pipelines[h]; ok {
		p.Release()
		delete(d.pipelines, h)
		if d.active == h {
			d.active = 0
		}
	}
}

func (d *Driver) UseProgram(h shader.Handle) {
	if _, ok := d.pipelines[h]; ok || h == 0 {
		d.active = h
	}
}

// Pipeline returns the render pipeline of a linked program.
//
// Parameters:
//   - h: the program handle
//
// Returns:
//   - *wgpu.RenderPipeline: the pipeline, nil if h is not a live program
func (d *Driver) Pipeline(h shader.Handle) *wgpu.RenderPipeline {
	return d.pipelines[h]
}

// ActivePipeline returns the pipeline last selected with UseProgram, nil if none.
func (d *Driver) ActivePipeline() *wgpu.RenderPipeline {
	return d.pipelines[d.active]
}

// Device returns the device pipelines are created on.
func (d *Driver) Device() *wgpu.Device {
	return d.device
}

// Release frees every module and pipeline still alive, then the device, adapter and instance.
func (d *Driver) Release() {
	for h := range d.modules {
		d.DeleteStage(h)
	}
	for h := range d.pipelines {
		d.DeleteProgram(h)
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

func (d *Driver) allocate() shader.Handle {
	d.next++
	return d.next
}
