package usecase

import "errors"

// Error definitions for analysis usecase
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrDecodeFailure       = errors.New("image could not be decoded")
	ErrModelsUnavailable   = errors.New("no models available")
	ErrInferenceFailure    = errors.New("model inference failed")
	ErrNoUsablePredictions = errors.New("no model produced a usable prediction")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrHistoryUnavailable  = errors.New("analysis history is not enabled")
)
