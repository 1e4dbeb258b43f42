package shader

import "fmt"

// Stage identifies one phase of the shader pipeline. It is a closed enumeration: only
// StageVertex and StageFragment are valid, every other value is rejected by Valid.
type Stage uint8

const (
	// StageVertex is the vertex stage, run once per submitted vertex.
	StageVertex Stage = iota + 1

	// StageFragment is the fragment stage, run once per rasterized fragment.
	StageFragment
)

// Valid reports whether s is one of the two defined stages.
//
// Returns:
//   - bool: true for StageVertex and StageFragment
func (s Stage) Valid() bool {
	return s == StageVertex || s == StageFragment
}

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}
