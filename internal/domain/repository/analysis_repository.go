package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// AnalysisRepository defines the interface for analysis data operations
type AnalysisRepository interface {
	// Create stores a new analysis
	Create(ctx context.Context, analysis *entity.Analysis) error

	// GetByID retrieves an analysis by its ID, or nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Analysis, error)

	// List retrieves analyses newest first with pagination
	List(ctx context.Context, limit, offset int) ([]*entity.Analysis, int64, error)

	// ListByStatus retrieves analyses with the given status code
	ListByStatus(ctx context.Context, statusCode, limit, offset int) ([]*entity.Analysis, int64, error)

	// Delete deletes an analysis by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
