package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// Default graph tensor names
const (
	DefaultInputName          = "input"
	DefaultOutputName         = "output"
	DefaultClassInputName     = "class_index"
	DefaultGradientOutputName = "gradient"
)

const channels = 3

// ErrGradientUnsupported is returned when no gradient graph was loaded
var ErrGradientUnsupported = errors.New("model has no gradient graph")

// Classifier runs an exported ONNX graph with pre-bound tensors.
// Calls are serialized because bound tensors are shared between runs.
type Classifier struct {
	mu            sync.Mutex
	name          string
	height, width int
	channelsFirst bool

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	gradSession *ort.AdvancedSession
	gradInput   *ort.Tensor[float32]
	gradClass   *ort.Tensor[float32]
	gradOutput  *ort.Tensor[float32]
}

// New loads the predict graph and, when present, the gradient graph of spec
func New(spec entity.ModelSpec, numClasses int) (*Classifier, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("model %s: class count must be positive", spec.Name)
	}
	if spec.InputSize.Height <= 0 || spec.InputSize.Width <= 0 {
		return nil, fmt.Errorf("model %s: invalid input size %dx%d", spec.Name, spec.InputSize.Height, spec.InputSize.Width)
	}

	c := &Classifier{
		name:          spec.Name,
		height:        spec.InputSize.Height,
		width:         spec.InputSize.Width,
		channelsFirst: spec.ChannelsFirst,
	}

	inputName := orDefault(spec.InputName, DefaultInputName)
	outputName := orDefault(spec.OutputName, DefaultOutputName)

	var err error
	if c.input, err = ort.NewEmptyTensor[float32](c.inputShape()); err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	if c.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numClasses))); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	c.session, err = ort.NewAdvancedSession(spec.ArtifactPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{c.input}, []ort.ArbitraryTensor{c.output},
		nil)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", spec.ArtifactPath, err)
	}

	if spec.GradientPath == "" {
		return c, nil
	}
	if _, statErr := os.Stat(spec.GradientPath); errors.Is(statErr, os.ErrNotExist) {
		return c, nil
	}
	if err := c.loadGradient(spec, numClasses, inputName); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Classifier) loadGradient(spec entity.ModelSpec, numClasses int, inputName string) error {
	var err error
	if c.gradInput, err = ort.NewEmptyTensor[float32](c.inputShape()); err != nil {
		return fmt.Errorf("failed to create gradient input tensor: %w", err)
	}
	if c.gradClass, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numClasses))); err != nil {
		return fmt.Errorf("failed to create class tensor: %w", err)
	}
	if c.gradOutput, err = ort.NewEmptyTensor[float32](c.inputShape()); err != nil {
		return fmt.Errorf("failed to create gradient output tensor: %w", err)
	}

	c.gradSession, err = ort.NewAdvancedSession(spec.GradientPath,
		[]string{inputName, orDefault(spec.ClassInputName, DefaultClassInputName)},
		[]string{orDefault(spec.GradientOutputName, DefaultGradientOutputName)},
		[]ort.ArbitraryTensor{c.gradInput, c.gradClass}, []ort.ArbitraryTensor{c.gradOutput},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create gradient session for %s: %w", spec.GradientPath, err)
	}
	return nil
}

func (c *Classifier) inputShape() ort.Shape {
	if c.channelsFirst {
		return ort.NewShape(1, channels, int64(c.height), int64(c.width))
	}
	return ort.NewShape(1, int64(c.height), int64(c.width), channels)
}

func (c *Classifier) checkInput(t *entity.Tensor) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.Height() != c.height || t.Width() != c.width || t.Channels() != channels {
		return fmt.Errorf("model %s expects %dx%dx%d input, got %v", c.name, c.height, c.width, channels, t.Shape)
	}
	return nil
}

func (c *Classifier) bind(dst []float32, src []float32) {
	if c.channelsFirst {
		nhwcToNCHW(dst, src, c.height, c.width, channels)
		return
	}
	copy(dst, src)
}

// Predict runs one forward pass per batch element
func (c *Classifier) Predict(ctx context.Context, batch *entity.Tensor) ([][]float32, error) {
	if err := c.checkInput(batch); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.height * c.width * channels
	out := make([][]float32, batch.Batch())
	for n := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.bind(c.input.GetData(), batch.Data[n*size:(n+1)*size])
		if err := c.session.Run(); err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}

		probs := c.output.GetData()
		out[n] = make([]float32, len(probs))
		copy(out[n], probs)
	}
	return out, nil
}

// Gradient runs the gradient graph for a single image
func (c *Classifier) Gradient(ctx context.Context, input *entity.Tensor, classIndex int) (*entity.Tensor, error) {
	if c.gradSession == nil {
		return nil, ErrGradientUnsupported
	}
	if err := c.checkInput(input); err != nil {
		return nil, err
	}
	if input.Batch() != 1 {
		return nil, fmt.Errorf("gradient requires a single image, got batch %d", input.Batch())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bind(c.gradInput.GetData(), input.Data)
	oneHot(c.gradClass.GetData(), classIndex)
	if err := c.gradSession.Run(); err != nil {
		return nil, fmt.Errorf("gradient pass failed: %w", err)
	}

	grad := entity.NewImageTensor(c.height, c.width, channels)
	if c.channelsFirst {
		nchwToNHWC(grad.Data, c.gradOutput.GetData(), c.height, c.width, channels)
	} else {
		copy(grad.Data, c.gradOutput.GetData())
	}
	return grad, nil
}

// Close destroys the sessions and bound tensors
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.session != nil {
		errs = append(errs, c.session.Destroy())
		c.session = nil
	}
	if c.gradSession != nil {
		errs = append(errs, c.gradSession.Destroy())
		c.gradSession = nil
	}
	for _, t := range []*ort.Tensor[float32]{c.input, c.output, c.gradInput, c.gradClass, c.gradOutput} {
		if t != nil {
			errs = append(errs, t.Destroy())
		}
	}
	c.input, c.output, c.gradInput, c.gradClass, c.gradOutput = nil, nil, nil, nil, nil
	return errors.Join(errs...)
}

var _ service.Classifier = (*Classifier)(nil)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
