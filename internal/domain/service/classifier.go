package service

import (
	"context"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// Classifier defines the contract of a loaded image classification model
type Classifier interface {
	// Predict runs a forward pass and returns one probability vector per batch element
	Predict(ctx context.Context, batch *entity.Tensor) ([][]float32, error)

	// Gradient returns d(probability[classIndex]) / d(input) for a single-image batch.
	// The result has the same shape as input.
	Gradient(ctx context.Context, input *entity.Tensor, classIndex int) (*entity.Tensor, error)

	// Close releases backend resources
	Close() error
}

// PreprocessFunc transforms a raw [0,255] RGB tensor into model input space
type PreprocessFunc func(*entity.Tensor) *entity.Tensor
