package report

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// DateLayout is the timestamp format used in summaries and reports
const DateLayout = "2006-01-02 15:04:05"

// Artifact file names
const (
	SummaryFile    = "multi_model_summary.json"
	ReportFile     = "multi_model_analysis_report.txt"
	ComparisonFile = "multi_model_comparison.png"
	ConfidenceFile = "confidence_comparison.png"
	AgreementFile  = "agreement_matrix.png"
)

// ExplanationFile returns the per-model explanation image name
func ExplanationFile(model string) string {
	return model + "_explanation.png"
}

// Input is everything the assembler needs for one analysis
type Input struct {
	AnalysisID uuid.UUID
	ImagePath  string
	Date       time.Time
	Verdict    entity.AgreementVerdict
	Outcomes   []entity.ModelOutcome
	Labels     entity.Labels
	Files      []string
}

// ModelPrediction is one model's entry in the summary
type ModelPrediction struct {
	PredictedClass string             `json:"predicted_class"`
	Confidence     float64            `json:"confidence"`
	AllPredictions map[string]float64 `json:"all_predictions"`
}

// PairAgreement describes one ordered model pair
type PairAgreement struct {
	Agree          bool    `json:"agree"`
	Class1         string  `json:"class1"`
	Class2         string  `json:"class2"`
	AgreementScore float64 `json:"agreement_score"`
}

// Quorum describes the vote that produced the verdict
type Quorum struct {
	Required int `json:"required"`
	Votes    int `json:"votes"`
	Voters   int `json:"voters"`
}

// Summary is the JSON summary document of one analysis
type Summary struct {
	AnalysisID       string                         `json:"analysis_id"`
	ImagePath        string                         `json:"image_path"`
	AnalysisDate     string                         `json:"analysis_date"`
	IsPaddyLeaf      bool                           `json:"is_paddy_leaf"`
	FinalPrediction  string                         `json:"final_prediction"`
	FinalConfidence  float64                        `json:"final_confidence"`
	BestModel        *string                        `json:"best_model"`
	StatusCode       int                            `json:"status_code"`
	Quorum           Quorum                         `json:"quorum"`
	Models           []string                       `json:"models"`
	ModelPredictions map[string]ModelPrediction     `json:"model_predictions"`
	ModelAgreement   map[string]PairAgreement       `json:"model_agreement"`
	ModelFailures    map[string]entity.ModelFailure `json:"model_failures"`
	Files            []string                       `json:"generated_files,omitempty"`

	// ranked keeps per-model probabilities in vocabulary order for the text report
	ranked map[string][]ranked
}

// Assemble builds the summary of one analysis. It has no side effects.
func Assemble(in Input) *Summary {
	s := &Summary{
		AnalysisID:       in.AnalysisID.String(),
		ImagePath:        in.ImagePath,
		AnalysisDate:     in.Date.Format(DateLayout),
		IsPaddyLeaf:      in.Verdict.IsPaddyLeaf,
		FinalPrediction:  in.Verdict.FinalClass,
		FinalConfidence:  finite(in.Verdict.FinalConfidence),
		StatusCode:       in.Labels.StatusCode(in.Verdict.FinalClass),
		Quorum:           Quorum{Required: in.Verdict.Quorum, Votes: in.Verdict.Votes, Voters: in.Verdict.Voters},
		ModelPredictions: make(map[string]ModelPrediction),
		ModelAgreement:   make(map[string]PairAgreement),
		ModelFailures:    make(map[string]entity.ModelFailure),
		Files:            in.Files,
		ranked:           make(map[string][]ranked),
	}
	if in.Verdict.HasBestModel() {
		best := in.Verdict.BestModel
		s.BestModel = &best
	}

	var voted []entity.PredictionResult
	for _, o := range in.Outcomes {
		s.Models = append(s.Models, o.Model)
		if o.Failure != nil {
			s.ModelFailures[o.Model] = *o.Failure
		}
		if !o.Voted() {
			continue
		}

		p := *o.Prediction
		voted = append(voted, p)

		all := make(map[string]float64, len(p.Probabilities))
		order := make([]ranked, 0, len(p.Probabilities))
		for i, v := range p.Probabilities {
			name := in.Labels.Name(i)
			if name == "" {
				continue
			}
			all[name] = finite(v)
			order = append(order, ranked{label: name, value: all[name]})
		}
		s.ranked[o.Model] = order
		s.ModelPredictions[o.Model] = ModelPrediction{
			PredictedClass: in.Labels.Name(p.ClassIndex),
			Confidence:     finite(p.Confidence),
			AllPredictions: all,
		}
	}

	for i, a := range voted {
		for j, b := range voted {
			if i == j {
				continue
			}
			s.ModelAgreement[a.Model+"_"+b.Model] = PairAgreement{
				Agree:          a.ClassIndex == b.ClassIndex,
				Class1:         in.Labels.Name(a.ClassIndex),
				Class2:         in.Labels.Name(b.ClassIndex),
				AgreementScore: finite(in.Verdict.Agreement.Score(a.Model, b.Model)),
			}
		}
	}

	return s
}

// JSON encodes the summary as indented JSON
func (s *Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "    ")
}

// finite maps NaN and infinities to zero so the summary always encodes
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
