package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	assert.InDelta(t, 32.0, Dot(a, b), 1e-6)
}

func TestCosine(t *testing.T) {
	t.Run("Identical", func(t *testing.T) {
		v := []float32{0.3, 0.4, 0.5}
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
	})

	t.Run("Orthogonal", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		assert.InDelta(t, 0.0, Cosine(a, b), 1e-6)
	})

	t.Run("ZeroNorm", func(t *testing.T) {
		a := []float32{0, 0}
		b := []float32{1, 1}
		assert.Equal(t, float32(0), Cosine(a, b))
	})
}

func TestNormalizeL2(t *testing.T) {
	t.Run("InPlace", func(t *testing.T) {
		v := []float32{3, 4}
		require.True(t, NormalizeL2InPlace(v))
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("CopyLeavesSource", func(t *testing.T) {
		src := []float32{3, 4}
		dst, ok := NormalizeL2Copy(src)
		require.True(t, ok)
		assert.Equal(t, []float32{3, 4}, src)
		assert.InDelta(t, 1.0, Norm(dst), 1e-6)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		assert.False(t, NormalizeL2InPlace([]float32{0, 0, 0}))
		assert.False(t, NormalizeL2InPlace(nil))
	})
}

func TestTruncateNormalize(t *testing.T) {
	t.Run("PrefixIsUnitLength", func(t *testing.T) {
		v := []float32{0.9, 0.1, 0.3, 0.7}
		q := TruncateNormalize(v, 2)
		require.Len(t, q, 2)
		assert.InDelta(t, 1.0, Norm(q), 1e-6)
		// Direction preserved.
		assert.InDelta(t, float64(v[0]/v[1]), float64(q[0]/q[1]), 1e-5)
	})

	t.Run("TruncationLongerThanVector", func(t *testing.T) {
		v := []float32{3, 4}
		q := TruncateNormalize(v, 10)
		require.Len(t, q, 2)
		assert.InDelta(t, 1.0, Norm(q), 1e-6)
	})

	t.Run("ZeroPrefix", func(t *testing.T) {
		v := []float32{0, 0, 1}
		q := TruncateNormalize(v, 2)
		require.Len(t, q, 2)
		for _, x := range q {
			assert.False(t, math.IsNaN(float64(x)))
			assert.Equal(t, float32(0), x)
		}
	})
}

func TestTruncatedNorm(t *testing.T) {
	v := []float32{3, 4, 100}
	assert.InDelta(t, 5.0, TruncatedNorm(v, 2), 1e-6)
	assert.InDelta(t, float64(Norm(v)), float64(TruncatedNorm(v, 99)), 1e-6)
}
