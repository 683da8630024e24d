package entity

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is the persisted record of one image analysis
type Analysis struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ImageName       string    `json:"image_name" gorm:"type:varchar(255);not null"`
	ImageSHA256     string    `json:"image_sha256" gorm:"type:varchar(64);not null;index"`
	IsPaddyLeaf     bool      `json:"is_paddy_leaf" gorm:"not null"`
	FinalClass      string    `json:"final_class" gorm:"type:varchar(100);not null"`
	FinalConfidence float64   `json:"final_confidence"`
	BestModel       string    `json:"best_model" gorm:"type:varchar(100)"`
	StatusCode      int       `json:"status_code" gorm:"not null"`
	ModelCount      int       `json:"model_count" gorm:"default:0"`
	FailedModels    int       `json:"failed_models" gorm:"default:0"`
	Summary         string    `json:"summary" gorm:"type:text"`
	Report          string    `json:"report" gorm:"type:text"`
	OutputDir       string    `json:"output_dir" gorm:"type:varchar(512)"`
	LatencyMs       int64     `json:"latency_ms" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (Analysis) TableName() string {
	return "analyses"
}

// NewAnalysis creates a new Analysis for an uploaded image
func NewAnalysis(imageName, imageSHA256 string) *Analysis {
	return &Analysis{
		ID:          uuid.New(),
		ImageName:   imageName,
		ImageSHA256: imageSHA256,
		FinalClass:  NotPaddyLeaf,
		StatusCode:  StatusNotPaddy,
	}
}

// SetVerdict copies the ensemble decision onto the record
func (a *Analysis) SetVerdict(v AgreementVerdict, statusCode int) {
	a.IsPaddyLeaf = v.IsPaddyLeaf
	a.FinalClass = v.FinalClass
	a.FinalConfidence = v.FinalConfidence
	a.BestModel = v.BestModel
	a.StatusCode = statusCode
}

// SuccessRate returns the fraction of models that produced a prediction
func (a *Analysis) SuccessRate() float64 {
	if a.ModelCount == 0 {
		return 0
	}
	return float64(a.ModelCount-a.FailedModels) / float64(a.ModelCount)
}

// AnalysisResult is the client-facing outcome of one analysis
type AnalysisResult struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	Disease    string    `json:"disease"`
	StatusCode int       `json:"status_code"`
	Report     string    `json:"report"`
	// Summary is the JSON summary document as text
	Summary string `json:"summary"`
	// Images maps file names to PNG bytes, base64 encoded on the wire
	Images map[string][]byte `json:"images"`
	// Predictions holds the vote of every model that produced one
	Predictions map[string]PredictionResult `json:"predictions"`
	OutputDir   string                      `json:"output_dir,omitempty"`
	Cached      bool                        `json:"cached"`
}
