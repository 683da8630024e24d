package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/registry"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUsecaseError maps usecase errors to HTTP error responses.
// It provides consistent error handling across all handlers.
func MapUsecaseError(err error) ErrorResponse {
	switch {
	case errors.Is(err, usecase.ErrAnalysisNotFound):
		return ErrorResponse{
			StatusCode: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    "analysis not found",
		}
	case errors.Is(err, usecase.ErrInvalidRequest):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       "INVALID_REQUEST",
			Message:    "invalid request",
		}
	case errors.Is(err, entity.ErrImageTooLarge):
		return ErrorResponse{
			StatusCode: http.StatusRequestEntityTooLarge,
			Code:       "IMAGE_TOO_LARGE",
			Message:    "image dimensions exceed the limit",
		}
	case errors.Is(err, usecase.ErrDecodeFailure):
		return ErrorResponse{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       "DECODE_FAILURE",
			Message:    "uploaded file is not a supported image",
		}
	case errors.Is(err, usecase.ErrModelsUnavailable), errors.Is(err, registry.ErrNoModelsAvailable):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "MODELS_UNAVAILABLE",
			Message:    "no models are available",
		}
	case errors.Is(err, usecase.ErrNoUsablePredictions), errors.Is(err, usecase.ErrInferenceFailure):
		return ErrorResponse{
			StatusCode: http.StatusBadGateway,
			Code:       "INFERENCE_FAILED",
			Message:    "no model produced a usable prediction",
		}
	case errors.Is(err, usecase.ErrHistoryUnavailable):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "HISTORY_UNAVAILABLE",
			Message:    "analysis history is not enabled",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandleUsecaseError handles a usecase error by sending an appropriate HTTP response.
func HandleUsecaseError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleInvalidUUID handles an invalid UUID parameter error.
func HandleInvalidUUID(c *gin.Context, paramName string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+paramName)
}

// HandleInvalidRequest handles a generic invalid request error.
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}
