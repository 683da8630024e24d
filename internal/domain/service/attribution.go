package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// Method selects the attribution algorithm
type Method string

const (
	// MethodGradient is a single input-gradient pass
	MethodGradient Method = "gradient"
	// MethodSmoothGrad averages gradients over noisy copies of the input
	MethodSmoothGrad Method = "smoothgrad"
)

// Attribution defaults
const (
	DefaultSamples    = 30
	DefaultNoiseLevel = 0.1
)

// ErrInvalidGradient is returned when a backend gradient does not match the input
var ErrInvalidGradient = errors.New("invalid gradient")

// ExplainOptions configures one Explain call
type ExplainOptions struct {
	// ClassIndex targets a class; nil targets the model's top class on the clean input
	ClassIndex *int
	Samples    int
	NoiseLevel float64
	Method     Method
}

// AttributionConfig holds the engine defaults
type AttributionConfig struct {
	Method     Method  `mapstructure:"method"`
	Samples    int     `mapstructure:"samples"`
	NoiseLevel float64 `mapstructure:"noise_level"`
	// Seed makes noise reproducible when non-zero
	Seed int64 `mapstructure:"seed"`
}

// Attributor computes gradient saliency maps.
// Results are not bit-for-bit reproducible unless a seed is configured.
type Attributor struct {
	cfg AttributionConfig
}

// NewAttributor creates an attribution engine
func NewAttributor(cfg AttributionConfig) *Attributor {
	if cfg.Method == "" {
		cfg.Method = MethodSmoothGrad
	}
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.NoiseLevel <= 0 {
		cfg.NoiseLevel = DefaultNoiseLevel
	}
	return &Attributor{cfg: cfg}
}

// Defaults returns options filled from the engine configuration
func (a *Attributor) Defaults() ExplainOptions {
	return ExplainOptions{
		Samples:    a.cfg.Samples,
		NoiseLevel: a.cfg.NoiseLevel,
		Method:     a.cfg.Method,
	}
}

// Explain computes a saliency map of input for one class of model
func (a *Attributor) Explain(ctx context.Context, input *entity.Tensor, model Classifier, opts ExplainOptions) (*entity.SaliencyMap, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if opts.Method == "" {
		opts.Method = a.cfg.Method
	}
	if opts.Samples <= 0 {
		opts.Samples = a.cfg.Samples
	}
	if opts.NoiseLevel <= 0 {
		opts.NoiseLevel = a.cfg.NoiseLevel
	}

	class, err := a.targetClass(ctx, input, model, opts.ClassIndex)
	if err != nil {
		return nil, err
	}

	var sum []float64
	switch opts.Method {
	case MethodGradient:
		sum, err = a.accumulate(ctx, input, model, class, 1, 0)
	case MethodSmoothGrad:
		sum, err = a.accumulate(ctx, input, model, class, opts.Samples, opts.NoiseLevel)
	default:
		return nil, fmt.Errorf("unknown attribution method %q", opts.Method)
	}
	if err != nil {
		return nil, err
	}

	return entity.NewSaliencyFromGradient(sum, input.Height(), input.Width(), input.Channels()), nil
}

func (a *Attributor) targetClass(ctx context.Context, input *entity.Tensor, model Classifier, class *int) (int, error) {
	if class != nil {
		return *class, nil
	}
	probs, err := model.Predict(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("predict target class: %w", err)
	}
	if len(probs) == 0 {
		return 0, errors.New("predict target class: empty batch")
	}
	p, err := entity.NewPredictionResult("", probs[0])
	if err != nil {
		return 0, err
	}
	return p.ClassIndex, nil
}

// accumulate averages raw signed gradients over n passes. With noise > 0 each
// pass sees the input plus independent N(0, noise) perturbations.
func (a *Attributor) accumulate(ctx context.Context, input *entity.Tensor, model Classifier, class, n int, noise float64) ([]float64, error) {
	rng := a.newRand()
	sum := make([]float64, input.Len())
	x := input

	for s := 0; s < n; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if noise > 0 {
			x = input.Clone()
			for i := range x.Data {
				x.Data[i] += float32(rng.NormFloat64() * noise)
			}
		}

		grad, err := model.Gradient(ctx, x, class)
		if err != nil {
			return nil, fmt.Errorf("gradient sample %d: %w", s, err)
		}
		if grad == nil || !grad.SameShape(input) || grad.Len() != input.Len() {
			return nil, fmt.Errorf("%w: shape mismatch with input %v", ErrInvalidGradient, input.Shape)
		}
		for i, g := range grad.Data {
			sum[i] += float64(g)
		}
	}

	for i := range sum {
		sum[i] /= float64(n)
	}
	return sum, nil
}

func (a *Attributor) newRand() *rand.Rand {
	seed := a.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
