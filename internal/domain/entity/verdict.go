package entity

// AgreementMatrix holds pairwise agreement scores indexed by model name
type AgreementMatrix struct {
	Models []string    `json:"models"`
	Scores [][]float64 `json:"scores"`
}

// Score returns the agreement between two models, or 0 if either is unknown
func (m AgreementMatrix) Score(a, b string) float64 {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Scores[i][j]
}

func (m AgreementMatrix) index(name string) int {
	for i, n := range m.Models {
		if n == name {
			return i
		}
	}
	return -1
}

// AgreementVerdict is the ensemble decision for one image
type AgreementVerdict struct {
	IsPaddyLeaf     bool            `json:"is_paddy_leaf"`
	FinalClass      string          `json:"final_class"`
	FinalClassIndex int             `json:"final_class_index"`
	FinalConfidence float64         `json:"final_confidence"`
	BestModel       string          `json:"best_model,omitempty"`
	Votes           int             `json:"votes"`
	Quorum          int             `json:"quorum"`
	Voters          int             `json:"voters"`
	Agreement       AgreementMatrix `json:"pairwise_agreement"`
}

// HasBestModel reports whether a best model was selected
func (v AgreementVerdict) HasBestModel() bool {
	return v.BestModel != ""
}
