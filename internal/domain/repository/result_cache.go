package repository

import (
	"context"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// ResultCache stores finished analysis results keyed by image digest
type ResultCache interface {
	// Get returns the cached result, or nil on a miss
	Get(ctx context.Context, digest string) (*entity.AnalysisResult, error)

	// Set stores a result
	Set(ctx context.Context, digest string, result *entity.AnalysisResult) error
}
