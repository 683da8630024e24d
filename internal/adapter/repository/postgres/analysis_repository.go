package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/repository"
)

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) repository.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *entity.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Analysis, error) {
	var analysis entity.Analysis
	err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) List(ctx context.Context, limit, offset int) ([]*entity.Analysis, int64, error) {
	var analyses []*entity.Analysis
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Analysis{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Omit("summary", "report").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&analyses).Error
	if err != nil {
		return nil, 0, err
	}

	return analyses, total, nil
}

func (r *analysisRepository) ListByStatus(ctx context.Context, statusCode, limit, offset int) ([]*entity.Analysis, int64, error) {
	var analyses []*entity.Analysis
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Analysis{}).
		Where("status_code = ?", statusCode).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Omit("summary", "report").
		Where("status_code = ?", statusCode).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&analyses).Error
	if err != nil {
		return nil, 0, err
	}
	return analyses, total, nil
}

func (r *analysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Analysis{}, "id = ?", id).Error
}
