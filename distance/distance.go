package distance

import (
	"math"
	"slices"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// Cosine calculates the cosine similarity of two vectors.
// Assumes vectors are the same length. Returns 0 if either vector has zero
// L2 norm.
func Cosine(a, b []float32) float32 {
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	ScaleInPlace(v, inv)
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// TruncateNormalize returns the leading d elements of v, renormalized to
// unit L2 length. If d >= len(v) the whole vector is used. A zero-norm
// prefix is returned as a zero vector of length d so that downstream dot
// products yield a similarity of 0 instead of NaN.
func TruncateNormalize(v []float32, d int) []float32 {
	if d > len(v) {
		d = len(v)
	}
	dst := slices.Clone(v[:d])
	if !NormalizeL2InPlace(dst) {
		for i := range dst {
			dst[i] = 0
		}
	}
	return dst
}

// TruncatedNorm returns the L2 norm of the leading d elements of v.
func TruncatedNorm(v []float32, d int) float32 {
	if d > len(v) {
		d = len(v)
	}
	return Norm(v[:d])
}
