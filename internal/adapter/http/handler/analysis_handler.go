package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	analysisUC     usecase.AnalysisUsecase
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisUC usecase.AnalysisUsecase, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{analysisUC: analysisUC, maxUploadBytes: maxUploadBytes}
}

// Analyze handles POST /api/v1/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	result, ok := h.analyze(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// AnalyzeLegacy handles POST /analyze and returns the bare result document
func (h *AnalysisHandler) AnalyzeLegacy(c *gin.Context) {
	result, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) analyze(c *gin.Context) (*entity.AnalysisResult, bool) {
	filename, data, err := ReadUpload(c, h.maxUploadBytes)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error())
		case errors.Is(err, ErrNoFile):
			HandleInvalidRequest(c, "no image file provided, use 'file' as the form field name")
		default:
			HandleInvalidRequest(c, err.Error())
		}
		return nil, false
	}

	result, err := h.analysisUC.Analyze(c.Request.Context(), &usecase.AnalyzeInput{
		Filename: filename,
		Data:     data,
	})
	if err != nil {
		HandleUsecaseError(c, err)
		return nil, false
	}
	return result, true
}

// GetAnalysis handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, err := ExtractUUIDParam(c, "id")
	if err != nil {
		HandleInvalidUUID(c, "analysis id")
		return
	}

	output, err := h.analysisUC.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// ListAnalyses handles GET /api/v1/analyses
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	status, err := ParseStatusFilter(c)
	if err != nil {
		HandleInvalidRequest(c, err.Error())
		return
	}
	page := ParsePagination(c)

	output, err := h.analysisUC.ListAnalyses(c.Request.Context(), status, page.Limit, page.Offset)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// ListModels handles GET /api/v1/models
func (h *AnalysisHandler) ListModels(c *gin.Context) {
	respondSuccess(c, http.StatusOK, h.analysisUC.Models())
}
