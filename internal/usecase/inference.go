package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/metrics"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/registry"
)

// TensorLoader resizes an image to a model input size and returns its raw RGB tensor
type TensorLoader func(img image.Image, size entity.Size) *entity.Tensor

// Explainer computes a saliency map for one model and class
type Explainer interface {
	Explain(ctx context.Context, input *entity.Tensor, model service.Classifier, opts service.ExplainOptions) (*entity.SaliencyMap, error)
}

// InferenceConfig configures the per-model pipelines
type InferenceConfig struct {
	Workers      int
	ModelTimeout time.Duration
	Loader       TensorLoader
	// Explainer is optional; without it no saliency maps are produced
	Explainer   Explainer
	ExplainOpts service.ExplainOptions
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// InferenceStage runs every registered model on one image in parallel
type InferenceStage struct {
	cfg InferenceConfig
}

// NewInferenceStage creates a new inference stage
func NewInferenceStage(cfg InferenceConfig) *InferenceStage {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &InferenceStage{cfg: cfg}
}

// Infer runs the pipeline of every handle and waits for all of them.
// Outcomes are returned in handle order. A failing model never fails the
// stage; its outcome carries the failure instead.
func (s *InferenceStage) Infer(ctx context.Context, img image.Image, handles []*registry.ModelHandle, labels entity.Labels) []entity.ModelOutcome {
	outcomes := make([]entity.ModelOutcome, len(handles))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, h := range handles {
		i, h := i, h
		g.Go(func() error {
			outcomes[i] = s.run(ctx, img, h, labels)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *InferenceStage) run(ctx context.Context, img image.Image, h *registry.ModelHandle, labels entity.Labels) (out entity.ModelOutcome) {
	out.Model = h.Name()
	start := time.Now()
	defer func() { out.Latency = time.Since(start) }()
	defer func() {
		if r := recover(); r != nil {
			out.Prediction, out.Saliency = nil, nil
			s.fail(&out, entity.StageInference, fmt.Errorf("%w: panic: %v", ErrInferenceFailure, r))
		}
	}()

	mctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()

	input, err := s.prepare(img, h)
	if err != nil {
		s.fail(&out, entity.StagePreprocess, err)
		return out
	}

	probs, err := guarded(mctx, func() ([][]float32, error) {
		return h.Classifier().Predict(mctx, input)
	})
	s.cfg.Metrics.ObserveInference(h.Name(), time.Since(start))
	if err != nil {
		s.fail(&out, stageOf(mctx, entity.StageInference), fmt.Errorf("%w: %v", ErrInferenceFailure, err))
		return out
	}
	if len(probs) != 1 || len(probs[0]) != labels.Len() {
		s.fail(&out, entity.StageInference, fmt.Errorf("%w: unexpected output shape", ErrInferenceFailure))
		return out
	}

	prediction, err := entity.NewPredictionResult(h.Name(), probs[0])
	if err != nil {
		s.fail(&out, entity.StageInference, fmt.Errorf("%w: %v", ErrInferenceFailure, err))
		return out
	}
	out.Prediction = prediction

	if s.cfg.Explainer == nil {
		return out
	}

	attrStart := time.Now()
	opts := s.cfg.ExplainOpts
	class := prediction.ClassIndex
	opts.ClassIndex = &class

	saliency, err := guarded(mctx, func() (*entity.SaliencyMap, error) {
		return s.cfg.Explainer.Explain(mctx, input, h.Classifier(), opts)
	})
	s.cfg.Metrics.ObserveAttribution(h.Name(), time.Since(attrStart))
	if err != nil {
		s.fail(&out, entity.StageAttribution, err)
		return out
	}
	out.Saliency = saliency
	return out
}

// guarded runs fn on its own goroutine and stops waiting once ctx is done.
// A backend that ignores ctx keeps running in the background and its late
// result is discarded. A panic in fn is returned as an error.
func guarded[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		var r result
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("panic: %v", p)
			}
			done <- r
		}()
		r.value, r.err = fn()
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (s *InferenceStage) prepare(img image.Image, h *registry.ModelHandle) (input *entity.Tensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preprocess panic: %v", r)
		}
	}()

	if s.cfg.Loader == nil {
		return nil, errors.New("no tensor loader configured")
	}
	raw := s.cfg.Loader(img, h.InputSize())
	input = h.Preprocess(raw)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return input, nil
}

func (s *InferenceStage) fail(out *entity.ModelOutcome, stage string, err error) {
	out.Fail(stage, err)
	s.cfg.Metrics.ObserveFailure(out.Model, stage)

	fields := []zap.Field{
		zap.String("model", out.Model),
		zap.String("stage", stage),
		zap.Error(err),
	}
	if stage == entity.StageAttribution {
		s.cfg.Logger.Warn("Attribution failed, keeping prediction", fields...)
		return
	}
	s.cfg.Logger.Warn("Model result dropped", fields...)
}

func stageOf(ctx context.Context, stage string) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return entity.StageTimeout
	}
	return stage
}

// Predictions returns the usable predictions keyed by model name
func Predictions(outcomes []entity.ModelOutcome) map[string]entity.PredictionResult {
	out := make(map[string]entity.PredictionResult)
	for _, o := range outcomes {
		if o.Voted() {
			out[o.Model] = *o.Prediction
		}
	}
	return out
}

// Voters returns the usable predictions in outcome order
func Voters(outcomes []entity.ModelOutcome) []entity.PredictionResult {
	var out []entity.PredictionResult
	for _, o := range outcomes {
		if o.Voted() {
			out = append(out, *o.Prediction)
		}
	}
	return out
}
