package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSaliencyFromGradient(t *testing.T) {
	t.Run("abs, channel mean and min-max normalize", func(t *testing.T) {
		// 1x2 image, 2 channels
		grad := []float64{
			-2, 2, // pixel 0 -> mean abs 2
			1, 0, // pixel 1 -> mean abs 0.5
		}

		m := NewSaliencyFromGradient(grad, 1, 2, 2)

		assert.Equal(t, 1, m.Height)
		assert.Equal(t, 2, m.Width)
		assert.Equal(t, 1.0, m.At(0, 0))
		assert.Equal(t, 0.0, m.At(0, 1))
	})

	t.Run("constant gradient yields all-zero map", func(t *testing.T) {
		grad := []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}

		m := NewSaliencyFromGradient(grad, 2, 2, 3)

		for _, v := range m.Values {
			assert.Equal(t, 0.0, v)
			assert.False(t, math.IsNaN(v))
		}
	})

	t.Run("non-finite components are ignored", func(t *testing.T) {
		grad := []float64{math.NaN(), 1, math.Inf(1), 0}

		m := NewSaliencyFromGradient(grad, 1, 2, 2)

		for _, v := range m.Values {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.Equal(t, 1.0, m.At(0, 0))
	})

	t.Run("values stay within unit interval", func(t *testing.T) {
		grad := make([]float64, 4*4*3)
		for i := range grad {
			grad[i] = math.Sin(float64(i)) * 10
		}

		m := NewSaliencyFromGradient(grad, 4, 4, 3)
		lo, hi := m.Range()

		assert.Equal(t, 0.0, lo)
		assert.Equal(t, 1.0, hi)
	})
}
