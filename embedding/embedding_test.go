package embedding

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError(t *testing.T) {
	base := errors.New("quota exceeded")

	t.Run("Transient", func(t *testing.T) {
		err := Transient(base)
		assert.True(t, IsTransient(err))
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "transient")
	})

	t.Run("Permanent", func(t *testing.T) {
		err := Permanent(base)
		assert.False(t, IsTransient(err))
		assert.Contains(t, err.Error(), "permanent")
	})

	t.Run("WrappedClassificationSurvives", func(t *testing.T) {
		err := fmt.Errorf("batch 3: %w", Permanent(base))
		assert.False(t, IsTransient(err))
	})

	t.Run("UnclassifiedIsRetryable", func(t *testing.T) {
		assert.True(t, IsTransient(errors.New("connection reset")))
	})
}
