package shader

// ShaderProgramBuilderOption is a functional option for configuring a shaderProgram.
// Use the With* functions to create options.
type ShaderProgramBuilderOption func(p *shaderProgram)

// WithVertexSource sets the initial vertex stage source.
//
// Parameters:
//   - source: the vertex shader text
//
// Returns:
//   - ShaderProgramBuilderOption: option function to apply
func WithVertexSource(source string) ShaderProgramBuilderOption {
	return func(p *shaderProgram) {
		p.vertexSource = source
	}
}

// WithFragmentSource sets the initial fragment stage source.
//
// Parameters:
//   - source: the fragment shader text
//
// Returns:
//   - ShaderProgramBuilderOption: option function to apply
func WithFragmentSource(source string) ShaderProgramBuilderOption {
	return func(p *shaderProgram) {
		p.fragmentSource = source
	}
}

// WithLabel sets the name the program is logged under.
//
// Parameters:
//   - label: the program label
//
// Returns:
//   - ShaderProgramBuilderOption: option function to apply
func WithLabel(label string) ShaderProgramBuilderOption {
	return func(p *shaderProgram) {
		if label != "" {
			p.label = label
		}
	}
}
