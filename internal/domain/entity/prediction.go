package entity

import (
	"fmt"
	"time"
)

// PredictionResult is one model's prediction for one image
type PredictionResult struct {
	Model         string    `json:"model"`
	ClassIndex    int       `json:"predicted_class_index"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"class_probabilities"`
}

// NewPredictionResult builds a result from a probability vector in [0,1].
// The argmax becomes the class index; probabilities are stored as percentages.
func NewPredictionResult(model string, probs []float32) (*PredictionResult, error) {
	if len(probs) == 0 {
		return nil, fmt.Errorf("model %s returned an empty probability vector", model)
	}

	best := 0
	pct := make([]float64, len(probs))
	for i, p := range probs {
		pct[i] = clampPercent(float64(p) * 100)
		if probs[i] > probs[best] {
			best = i
		}
	}

	return &PredictionResult{
		Model:         model,
		ClassIndex:    best,
		Confidence:    pct[best],
		Probabilities: pct,
	}, nil
}

func clampPercent(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Failure stages recorded in a ModelOutcome
const (
	StagePreprocess  = "preprocess"
	StageInference   = "inference"
	StageAttribution = "attribution"
	StageTimeout     = "timeout"
)

// ModelFailure describes why a model's pipeline did not fully complete
type ModelFailure struct {
	Stage   string `json:"stage"`
	Message string `json:"error"`
}

// ModelOutcome is the structured per-model result of an analysis
type ModelOutcome struct {
	Model      string
	Prediction *PredictionResult
	Saliency   *SaliencyMap
	Failure    *ModelFailure
	Latency    time.Duration
}

// Voted reports whether the model produced a usable prediction
func (o ModelOutcome) Voted() bool {
	return o.Prediction != nil
}

// Fail records a failure at the given stage
func (o *ModelOutcome) Fail(stage string, err error) {
	o.Failure = &ModelFailure{Stage: stage, Message: err.Error()}
}
