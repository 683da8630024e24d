package remote

import (
	"context"
	"fmt"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// Classifier adapts ModelClient to the service.Classifier interface
type Classifier struct {
	client *ModelClient
}

// NewClassifier creates a new remote classifier
func NewClassifier(client *ModelClient) service.Classifier {
	return &Classifier{client: client}
}

// Predict sends every batch element as one instance
func (c *Classifier) Predict(ctx context.Context, batch *entity.Tensor) ([][]float32, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	instances := make([][][][]float32, batch.Batch())
	for n := range instances {
		instances[n] = toNested(batch, n)
	}

	resp, err := c.client.Predict(ctx, instances)
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) != batch.Batch() {
		return nil, fmt.Errorf("model server returned %d predictions for %d instances", len(resp.Predictions), batch.Batch())
	}
	return resp.Predictions, nil
}

// Gradient asks the gradient signature for d(prob[classIndex])/d(input)
func (c *Classifier) Gradient(ctx context.Context, input *entity.Tensor, classIndex int) (*entity.Tensor, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.client.Gradient(ctx, toNested(input, 0), classIndex)
	if err != nil {
		return nil, err
	}
	if len(resp.Outputs) != 1 {
		return nil, fmt.Errorf("%w: expected one gradient, got %d", service.ErrInvalidGradient, len(resp.Outputs))
	}
	return fromNested(resp.Outputs[0], input)
}

// Close is a no-op; the HTTP client holds no per-model resources
func (c *Classifier) Close() error {
	return nil
}

// toNested converts batch element n of a NHWC tensor to [H][W][C]
func toNested(t *entity.Tensor, n int) [][][]float32 {
	h, w, ch := t.Height(), t.Width(), t.Channels()
	offset := n * h * w * ch

	out := make([][][]float32, h)
	for y := 0; y < h; y++ {
		out[y] = make([][]float32, w)
		for x := 0; x < w; x++ {
			i := offset + (y*w+x)*ch
			out[y][x] = t.Data[i : i+ch : i+ch]
		}
	}
	return out
}

func fromNested(v [][][]float32, like *entity.Tensor) (*entity.Tensor, error) {
	h, w, ch := like.Height(), like.Width(), like.Channels()
	if len(v) != h {
		return nil, fmt.Errorf("%w: gradient height %d, want %d", service.ErrInvalidGradient, len(v), h)
	}

	out := entity.NewImageTensor(h, w, ch)
	i := 0
	for y := range v {
		if len(v[y]) != w {
			return nil, fmt.Errorf("%w: gradient width %d, want %d", service.ErrInvalidGradient, len(v[y]), w)
		}
		for x := range v[y] {
			if len(v[y][x]) != ch {
				return nil, fmt.Errorf("%w: gradient channels %d, want %d", service.ErrInvalidGradient, len(v[y][x]), ch)
			}
			copy(out.Data[i:i+ch], v[y][x])
			i += ch
		}
	}
	return out, nil
}
