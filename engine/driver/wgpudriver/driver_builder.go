package wgpudriver

import "github.com/cogentcore/webgpu/wgpu"

// DriverBuilderOption configures a Driver before its device is requested.
type DriverBuilderOption func(d *Driver)

// WithForceFallbackAdapter requests the software fallback adapter, for machines without a GPU.
//
// Parameters:
//   - force: true to require the fallback adapter
//
// Returns:
//   - DriverBuilderOption: a function that applies the adapter preference
func WithForceFallbackAdapter(force bool) DriverBuilderOption {
	return func(d *Driver) {
		d.forceFallbackAdapter = force
	}
}

// WithTargetFormat sets the color format of the single render target pipelines are built for.
// The default is wgpu.TextureFormatRGBA8Unorm.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - DriverBuilderOption: a function that applies the target format
func WithTargetFormat(format wgpu.TextureFormat) DriverBuilderOption {
	return func(d *Driver) {
		d.targetFormat = format
	}
}

// WithLabel sets the label prefix of every GPU object the driver creates.
//
// Parameters:
//   - label: the label prefix, ignored if empty
//
// Returns:
//   - DriverBuilderOption: a function that applies the label
func WithLabel(label string) DriverBuilderOption {
	return func(d *Driver) {
		if label != "" {
			d.label = label
		}
	}
}
