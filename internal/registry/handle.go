package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// ModelHandle is one loaded model. It is immutable after warmup.
type ModelHandle struct {
	spec       entity.ModelSpec
	classifier service.Classifier
	preprocess service.PreprocessFunc
	warm       bool
}

// NewModelHandle wraps an already loaded classifier
func NewModelHandle(spec entity.ModelSpec, classifier service.Classifier, preprocess service.PreprocessFunc) *ModelHandle {
	return &ModelHandle{spec: spec, classifier: classifier, preprocess: preprocess}
}

// Name returns the unique model name
func (h *ModelHandle) Name() string { return h.spec.Name }

// InputSize returns the expected input resolution
func (h *ModelHandle) InputSize() entity.Size { return h.spec.InputSize }

// Spec returns the model configuration
func (h *ModelHandle) Spec() entity.ModelSpec { return h.spec }

// Classifier returns the backend
func (h *ModelHandle) Classifier() service.Classifier { return h.classifier }

// Warm reports whether the warmup inference succeeded
func (h *ModelHandle) Warm() bool { return h.warm }

// Preprocess maps a raw RGB tensor into the model's input space
func (h *ModelHandle) Preprocess(t *entity.Tensor) *entity.Tensor {
	if h.preprocess == nil {
		return t
	}
	return h.preprocess(t)
}

// Warmup runs one inference on a zero image and returns the output width
func (h *ModelHandle) Warmup(ctx context.Context) (outputs int, err error) {
	defer func() {
		if r := recover(); r != nil {
			outputs, err = 0, fmt.Errorf("warmup panic: %v", r)
		}
	}()

	size := h.InputSize()
	probs, err := h.classifier.Predict(ctx, entity.NewImageTensor(size.Height, size.Width, 3))
	if err != nil {
		return 0, err
	}
	if len(probs) != 1 {
		return 0, errors.New("warmup returned no prediction")
	}
	h.warm = true
	return len(probs[0]), nil
}
