package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPredictionResult(t *testing.T) {
	t.Run("argmax becomes class and confidence", func(t *testing.T) {
		result, err := NewPredictionResult("resnet50", []float32{0.1, 0.7, 0.2})

		require.NoError(t, err)
		assert.Equal(t, "resnet50", result.Model)
		assert.Equal(t, 1, result.ClassIndex)
		assert.InDelta(t, 70.0, result.Confidence, 1e-4)
		assert.Len(t, result.Probabilities, 3)
		assert.InDelta(t, 10.0, result.Probabilities[0], 1e-4)
	})

	t.Run("first maximum wins on ties", func(t *testing.T) {
		result, err := NewPredictionResult("m", []float32{0.5, 0.5})

		require.NoError(t, err)
		assert.Equal(t, 0, result.ClassIndex)
	})

	t.Run("confidence clamped to percent range", func(t *testing.T) {
		result, err := NewPredictionResult("m", []float32{1.2, -0.3, float32(math.NaN())})

		require.NoError(t, err)
		assert.Equal(t, 100.0, result.Confidence)
		assert.Equal(t, 0.0, result.Probabilities[1])
		assert.Equal(t, 0.0, result.Probabilities[2])
	})

	t.Run("empty vector is an error", func(t *testing.T) {
		result, err := NewPredictionResult("m", nil)

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestModelOutcome(t *testing.T) {
	outcome := ModelOutcome{Model: "vgg16"}
	assert.False(t, outcome.Voted())

	outcome.Fail(StageInference, errors.New("session closed"))
	assert.Equal(t, StageInference, outcome.Failure.Stage)
	assert.Equal(t, "session closed", outcome.Failure.Message)

	outcome.Prediction = &PredictionResult{Model: "vgg16"}
	assert.True(t, outcome.Voted())
}

func TestTensor(t *testing.T) {
	tensor := NewImageTensor(2, 3, 3)

	assert.Equal(t, []int{1, 2, 3, 3}, tensor.Shape)
	assert.Equal(t, 18, tensor.Len())
	assert.Equal(t, 1, tensor.Batch())
	assert.Equal(t, 2, tensor.Height())
	assert.Equal(t, 3, tensor.Width())
	assert.Equal(t, 3, tensor.Channels())
	assert.NoError(t, tensor.Validate())

	clone := tensor.Clone()
	clone.Data[0] = 5
	assert.Equal(t, float32(0), tensor.Data[0])
	assert.True(t, tensor.SameShape(clone))

	bad := &Tensor{Shape: []int{1, 2, 2, 3}, Data: make([]float32, 5)}
	assert.Error(t, bad.Validate())
	assert.Error(t, (&Tensor{Shape: []int{4}, Data: make([]float32, 4)}).Validate())
}
