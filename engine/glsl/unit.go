package glsl

import "sort"

// HasMain reports whether the unit defines `main`.
func (u *Unit) HasMain() bool {
	for _, f := range u.Functions {
		if f.Name == "main" && f.Defined {
			return true
		}
	}
	return false
}

// Inputs returns the `in` (or `attribute`) variables in declaration order.
func (u *Unit) Inputs() []Variable {
	return u.filter(StorageIn)
}

// Outputs returns the `out` variables in declaration order.
func (u *Unit) Outputs() []Variable {
	return u.filter(StorageOut)
}

// Varyings returns the legacy `varying` variables in declaration order.
func (u *Unit) Varyings() []Variable {
	return u.filter(StorageVarying)
}

// Uniforms returns the uniform variables and uniform block members in declaration order.
func (u *Unit) Uniforms() []Variable {
	return u.filter(StorageUniform)
}

// Variable looks up a global variable by name.
func (u *Unit) Variable(name string) (Variable, bool) {
	for _, v := range u.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

func (u *Unit) filter(storage Storage) []Variable {
	var out []Variable
	for _, v := range u.Variables {
		if v.Storage == storage {
			out = append(out, v)
		}
	}
	return out
}

// VertexAttributes returns the vertex stage inputs ordered by shader location. Inputs without an
// explicit layout location are assigned the lowest free locations in declaration order, which is
// how a linker without explicit bindings numbers them.
//
// Parameters:
//   - u: the parsed vertex stage
//
// Returns:
//   - []Variable: the inputs, each with Location set, sorted by Location
func VertexAttributes(u *Unit) []Variable {
	inputs := u.Inputs()
	used := make(map[int]struct{}, len(inputs))
	for _, v := range inputs {
		if v.Location >= 0 {
			used[v.Location] = struct{}{}
		}
	}

	next := 0
	for i := range inputs {
		if inputs[i].Location >= 0 {
			continue
		}
		for {
			if _, taken := used[next]; !taken {
				break
			}
			next++
		}
		inputs[i].Location = next
		used[next] = struct{}{}
	}

	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].Location < inputs[j].Location
	})
	return inputs
}
