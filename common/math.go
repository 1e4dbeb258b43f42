package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Add3dPoints returns the component-wise sum of two 3D points.
//
// Parameters:
//   - a: the first point
//   - b: the second point
//
// Returns:
//   - mgl32.Vec3: a + b
func Add3dPoints(a, b mgl32.Vec3) mgl32.Vec3 {
	return a.Add(b)
}

// Add4dPoints returns the component-wise sum of two homogeneous points.
//
// Parameters:
//   - a: the first point
//   - b: the second point
//
// Returns:
//   - mgl32.Vec4: a + b
func Add4dPoints(a, b mgl32.Vec4) mgl32.Vec4 {
	return a.Add(b)
}

// Multiply4x4Matrices returns the matrix product a * b.
// Matrices are column-major (OpenGL convention).
//
// Parameters:
//   - a: the left-hand matrix
//   - b: the right-hand matrix
//
// Returns:
//   - mgl32.Mat4: a * b
func Multiply4x4Matrices(a, b mgl32.Mat4) mgl32.Mat4 {
	return a.Mul4(b)
}

// MultiplyVectorAndMatrix transforms v by m, treating v as a column vector.
//
// Parameters:
//   - m: the transform
//   - v: the vector
//
// Returns:
//   - mgl32.Vec4: m * v
func MultiplyVectorAndMatrix(m mgl32.Mat4, v mgl32.Vec4) mgl32.Vec4 {
	return m.Mul4x1(v)
}

// ComputeDotProduct returns the dot product of two 3D vectors.
//
// Parameters:
//   - a: the first vector
//   - b: the second vector
//
// Returns:
//   - float32: a . b
func ComputeDotProduct(a, b mgl32.Vec3) float32 {
	return a.Dot(b)
}

// CalculateAngleBetweenTwoVectors returns the angle between two 3D vectors in radians, in [0, pi].
// The angle is zero when either vector has zero length.
//
// Parameters:
//   - a: the first vector
//   - b: the second vector
//
// Returns:
//   - float32: the angle in radians
func CalculateAngleBetweenTwoVectors(a, b mgl32.Vec3) float32 {
	lengths := a.Len() * b.Len()
	if lengths == 0 {
		return 0
	}
	// rounding can push the cosine just outside [-1, 1]
	cos := mgl32.Clamp(a.Dot(b)/lengths, -1, 1)
	return float32(math.Acos(float64(cos)))
}

// ComputeCrossProduct returns the cross product a x b, perpendicular to both inputs following the
// right-hand rule.
//
// Parameters:
//   - a: the first vector
//   - b: the second vector
//
// Returns:
//   - mgl32.Vec3: a x b
func ComputeCrossProduct(a, b mgl32.Vec3) mgl32.Vec3 {
	return a.Cross(b)
}
