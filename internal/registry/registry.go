package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// Registry errors
var (
	ErrLoadFailure         = errors.New("model load failed")
	ErrNoModelsAvailable   = errors.New("no models available")
	ErrLabelMismatch       = errors.New("model output does not match label vocabulary")
	ErrQuorumUnsatisfiable = errors.New("quorum cannot be satisfied")
)

// Loader constructs a backend for one model spec
type Loader interface {
	Load(ctx context.Context, spec entity.ModelSpec) (service.Classifier, error)
}

// PreprocessResolver maps a preprocessing mode name to its function
type PreprocessResolver func(mode string) (service.PreprocessFunc, error)

// Options configures registry construction
type Options struct {
	Specs      []entity.ModelSpec
	Labels     entity.Labels
	Quorum     service.QuorumPolicy
	Loader     Loader
	Preprocess PreprocessResolver
	Logger     *zap.Logger
}

// Exclusion records a configured model that did not make it into the registry
type Exclusion struct {
	Name string
	Err  error
}

// Registry is the immutable set of loaded models shared by every request
type Registry struct {
	handles  []*ModelHandle
	excluded []Exclusion
	labels   entity.Labels
	quorum   int
}

// New loads, warms up and validates every configured model.
// Models that fail to load or disagree with the label vocabulary are
// excluded; the registry fails only when none remain or the quorum
// cannot be met by the models that did load.
func New(ctx context.Context, opts Options) (*Registry, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Labels.Len() == 0 {
		return nil, fmt.Errorf("%w: empty label vocabulary", ErrNoModelsAvailable)
	}

	r := &Registry{labels: opts.Labels}
	seen := make(map[string]bool)

	for _, spec := range opts.Specs {
		if seen[spec.Name] || spec.Name == "" {
			r.exclude(log, spec.Name, fmt.Errorf("%w: duplicate or empty model name", ErrLoadFailure))
			continue
		}
		seen[spec.Name] = true

		h, err := load(ctx, opts, spec)
		if err != nil {
			r.exclude(log, spec.Name, err)
			continue
		}

		outputs, err := h.Warmup(ctx)
		if err != nil {
			log.Warn("Model warmup failed",
				zap.String("model", spec.Name),
				zap.Error(err),
			)
		} else if outputs != opts.Labels.Len() {
			h.classifier.Close()
			r.exclude(log, spec.Name, fmt.Errorf("%w: %d outputs for %d labels", ErrLabelMismatch, outputs, opts.Labels.Len()))
			continue
		}

		r.handles = append(r.handles, h)
		log.Info("Model registered",
			zap.String("model", spec.Name),
			zap.String("backend", spec.Backend),
			zap.Int("height", spec.InputSize.Height),
			zap.Int("width", spec.InputSize.Width),
			zap.Bool("warm", h.Warm()),
		)
	}

	if len(r.handles) == 0 {
		return nil, ErrNoModelsAvailable
	}

	quorum, err := opts.Quorum.Resolve(len(r.handles))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %v", ErrQuorumUnsatisfiable, err)
	}
	r.quorum = quorum

	log.Info("Model registry ready",
		zap.Int("models", len(r.handles)),
		zap.Int("excluded", len(r.excluded)),
		zap.Int("quorum", quorum),
	)
	return r, nil
}

func load(ctx context.Context, opts Options, spec entity.ModelSpec) (*ModelHandle, error) {
	if spec.InputSize.Height <= 0 || spec.InputSize.Width <= 0 {
		return nil, fmt.Errorf("%w: invalid input size %dx%d", ErrLoadFailure, spec.InputSize.Height, spec.InputSize.Width)
	}

	preprocess := func(t *entity.Tensor) *entity.Tensor { return t }
	if opts.Preprocess != nil {
		fn, err := opts.Preprocess(spec.Preprocess)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
		}
		preprocess = fn
	}

	classifier, err := opts.Loader.Load(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}

	return &ModelHandle{spec: spec, classifier: classifier, preprocess: preprocess}, nil
}

func (r *Registry) exclude(log *zap.Logger, name string, err error) {
	r.excluded = append(r.excluded, Exclusion{Name: name, Err: err})
	log.Error("Model excluded from registry",
		zap.String("model", name),
		zap.Error(err),
	)
}

// Handles returns the registered models in configuration order
func (r *Registry) Handles() []*ModelHandle {
	out := make([]*ModelHandle, len(r.handles))
	copy(out, r.handles)
	return out
}

// Get returns a model by name
func (r *Registry) Get(name string) (*ModelHandle, bool) {
	for _, h := range r.handles {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}

// Len returns the number of registered models
func (r *Registry) Len() int {
	return len(r.handles)
}

// Quorum returns the resolved vote threshold
func (r *Registry) Quorum() int {
	return r.quorum
}

// Labels returns the shared class vocabulary
func (r *Registry) Labels() entity.Labels {
	return r.labels
}

// Excluded returns the models dropped during construction
func (r *Registry) Excluded() []Exclusion {
	out := make([]Exclusion, len(r.excluded))
	copy(out, r.excluded)
	return out
}

// Close releases every backend
func (r *Registry) Close() error {
	var errs []error
	for _, h := range r.handles {
		if err := h.classifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", h.Name(), err))
		}
	}
	return errors.Join(errs...)
}
