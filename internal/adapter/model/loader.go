package model

import (
	"context"
	"fmt"
	"time"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/model/onnx"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/model/remote"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/service"
)

// LoaderConfig configures backend construction
type LoaderConfig struct {
	NumClasses        int
	SharedLibraryPath string
	RemoteTimeout     time.Duration
}

// Loader builds classifiers for model specs
type Loader struct {
	cfg LoaderConfig
}

// NewLoader creates a new backend loader
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 30 * time.Second
	}
	return &Loader{cfg: cfg}
}

// Load constructs the backend named by spec.Backend
func (l *Loader) Load(ctx context.Context, spec entity.ModelSpec) (service.Classifier, error) {
	switch spec.Backend {
	case entity.BackendONNX, "":
		if spec.ArtifactPath == "" {
			return nil, fmt.Errorf("model %s: artifact_path is required", spec.Name)
		}
		if err := onnx.InitEnvironment(l.cfg.SharedLibraryPath); err != nil {
			return nil, err
		}
		return onnx.New(spec, l.cfg.NumClasses)

	case entity.BackendRemote:
		if spec.Endpoint == "" {
			return nil, fmt.Errorf("model %s: endpoint is required", spec.Name)
		}
		client := remote.NewModelClient(spec.Endpoint, spec.Name, l.cfg.RemoteTimeout)
		status, err := client.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.Name, err)
		}
		if !status.Available() {
			return nil, fmt.Errorf("model %s: no available version on %s", spec.Name, spec.Endpoint)
		}
		return remote.NewClassifier(client), nil

	default:
		return nil, fmt.Errorf("model %s: unknown backend %q", spec.Name, spec.Backend)
	}
}
