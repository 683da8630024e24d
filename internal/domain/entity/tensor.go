package entity

import (
	"errors"
	"fmt"
)

// ErrImageTooLarge is returned for images whose pixel count exceeds the configured limit
var ErrImageTooLarge = errors.New("image dimensions exceed the limit")

// Size is a model input resolution in pixels
type Size struct {
	Height int `json:"height" mapstructure:"height"`
	Width  int `json:"width" mapstructure:"width"`
}

// Tensor is a dense float32 tensor laid out as [batch, height, width, channels]
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor creates a zero-filled tensor with the given shape
func NewTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor{Shape: s, Data: make([]float32, n)}
}

// NewImageTensor creates a zero-filled [1, h, w, c] tensor
func NewImageTensor(h, w, c int) *Tensor {
	return NewTensor(1, h, w, c)
}

// Batch returns the leading dimension
func (t *Tensor) Batch() int { return t.dim(0) }

// Height returns the image height
func (t *Tensor) Height() int { return t.dim(1) }

// Width returns the image width
func (t *Tensor) Width() int { return t.dim(2) }

// Channels returns the trailing channel dimension
func (t *Tensor) Channels() int { return t.dim(3) }

func (t *Tensor) dim(i int) int {
	if i >= len(t.Shape) {
		return 0
	}
	return t.Shape[i]
}

// Len returns the number of elements
func (t *Tensor) Len() int {
	return len(t.Data)
}

// Clone returns a deep copy of the tensor
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{Shape: make([]int, len(t.Shape)), Data: make([]float32, len(t.Data))}
	copy(c.Shape, t.Shape)
	copy(c.Data, t.Data)
	return c
}

// SameShape reports whether both tensors have identical shapes
func (t *Tensor) SameShape(o *Tensor) bool {
	if len(t.Shape) != len(o.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

// Validate checks that the shape is rank 4 and matches the data length
func (t *Tensor) Validate() error {
	if len(t.Shape) != 4 {
		return fmt.Errorf("tensor rank %d, want 4", len(t.Shape))
	}
	n := 1
	for _, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("invalid tensor shape %v", t.Shape)
		}
		n *= d
	}
	if n != len(t.Data) {
		return fmt.Errorf("tensor shape %v needs %d values, has %d", t.Shape, n, len(t.Data))
	}
	return nil
}
