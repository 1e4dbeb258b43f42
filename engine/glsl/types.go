package glsl

// Storage is the storage qualifier of a global variable.
type Storage int

const (
	// StorageNone is a plain global (or const) variable.
	StorageNone Storage = iota

	// StorageIn is a stage input (`in`, or `attribute` in legacy GLSL).
	StorageIn

	// StorageOut is a stage output (`out`).
	StorageOut

	// StorageVarying is a legacy `varying`: an output of the vertex stage and an input of the fragment stage.
	StorageVarying

	// StorageUniform is a `uniform` variable or block member.
	StorageUniform
)

func (s Storage) String() string {
	switch s {
	case StorageIn:
		return "in"
	case StorageOut:
		return "out"
	case StorageVarying:
		return "varying"
	case StorageUniform:
		return "uniform"
	default:
		return "global"
	}
}

// Variable is a global-scope variable declaration.
type Variable struct {
	Storage  Storage
	Type     string
	Name     string
	Location int // -1 when no layout(location = N) was given
	Line     int
}

// Function is a function definition or prototype at global scope.
type Function struct {
	Name       string
	ReturnType string
	Defined    bool
	Line       int
}

// Unit is the parsed global structure of one shader source.
type Unit struct {
	// Version is the #version number, 110 when the directive is absent.
	Version int

	// Profile is "core", "compatibility", "es" or empty.
	Profile string

	Variables []Variable
	Functions []Function
	Structs   []string
}

// builtinTypes lists the GLSL type names accepted in declarations.
var builtinTypes = map[string]struct{}{}

func init() {
	for _, t := range []string{
		"void", "bool", "int", "uint", "float", "double", "atomic_uint",
		"vec2", "vec3", "vec4", "dvec2", "dvec3", "dvec4",
		"bvec2", "bvec3", "bvec4", "ivec2", "ivec3", "ivec4", "uvec2", "uvec3", "uvec4",
		"mat2", "mat3", "mat4", "mat2x2", "mat2x3", "mat2x4", "mat3x2", "mat3x3", "mat3x4",
		"mat4x2", "mat4x3", "mat4x4", "dmat2", "dmat3", "dmat4",
		"dmat2x2", "dmat2x3", "dmat2x4", "dmat3x2", "dmat3x3", "dmat3x4", "dmat4x2", "dmat4x3", "dmat4x4",
	} {
		builtinTypes[t] = struct{}{}
	}
	for _, prefix := range []string{"", "i", "u"} {
		for _, kind := range []string{
			"sampler1D", "sampler2D", "sampler3D", "samplerCube", "sampler2DRect",
			"sampler1DArray", "sampler2DArray", "samplerCubeArray", "samplerBuffer",
			"sampler2DMS", "sampler2DMSArray",
			"image1D", "image2D", "image3D", "imageCube", "image2DRect",
			"image1DArray", "image2DArray", "imageCubeArray", "imageBuffer", "image2DMS", "image2DMSArray",
		} {
			builtinTypes[prefix+kind] = struct{}{}
		}
	}
	for _, t := range []string{
		"sampler1DShadow", "sampler2DShadow", "samplerCubeShadow", "sampler2DRectShadow",
		"sampler1DArrayShadow", "sampler2DArrayShadow", "samplerCubeArrayShadow",
	} {
		builtinTypes[t] = struct{}{}
	}
}

// qualifierStorage maps storage qualifier keywords to their Storage.
var qualifierStorage = map[string]Storage{
	"in":        StorageIn,
	"attribute": StorageIn,
	"out":       StorageOut,
	"varying":   StorageVarying,
	"uniform":   StorageUniform,
	"buffer":    StorageUniform,
}

// plainQualifiers are qualifiers that do not change the storage class.
var plainQualifiers = map[string]struct{}{
	"const": {}, "flat": {}, "smooth": {}, "noperspective": {}, "centroid": {}, "sample": {},
	"invariant": {}, "precise": {}, "patch": {}, "highp": {}, "mediump": {}, "lowp": {},
	"shared": {}, "coherent": {}, "volatile": {}, "restrict": {}, "readonly": {}, "writeonly": {},
}

// supportedVersions are the #version numbers accepted by Parse.
var supportedVersions = map[int]struct{}{
	100: {}, 110: {}, 120: {}, 130: {}, 140: {}, 150: {},
	300: {}, 310: {}, 320: {}, 330: {}, 400: {}, 410: {}, 420: {}, 430: {}, 440: {}, 450: {}, 460: {},
}
