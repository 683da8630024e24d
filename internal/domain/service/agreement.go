package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// ErrInvalidQuorum is returned when a quorum cannot be satisfied by the model count
var ErrInvalidQuorum = errors.New("invalid quorum")

// QuorumPolicy describes how many agreeing models are needed to accept a verdict.
// MinVotes takes precedence over Fraction; with neither set a strict majority is used.
type QuorumPolicy struct {
	MinVotes int     `mapstructure:"min_votes"`
	Fraction float64 `mapstructure:"fraction"`
}

// Resolve returns the vote threshold for n registered models
func (p QuorumPolicy) Resolve(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: no models registered", ErrInvalidQuorum)
	}

	var q int
	switch {
	case p.MinVotes > 0:
		q = p.MinVotes
	case p.Fraction > 0:
		if p.Fraction > 1 {
			return 0, fmt.Errorf("%w: fraction %.2f exceeds 1", ErrInvalidQuorum, p.Fraction)
		}
		q = int(math.Ceil(p.Fraction * float64(n)))
	default:
		q = n/2 + 1
	}

	if q < 1 || q > n {
		return 0, fmt.Errorf("%w: %d votes required but only %d models registered", ErrInvalidQuorum, q, n)
	}
	return q, nil
}

// Decide combines per-model predictions into one verdict.
//
// The mode is the most-voted class. On equal vote counts the class that was
// voted first (in the order of predictions) wins. Among the mode's voters
// the model with the strictly highest confidence is the best model; the
// earlier model is kept on equal confidences.
func Decide(predictions []entity.PredictionResult, labels entity.Labels, quorum int) entity.AgreementVerdict {
	verdict := entity.AgreementVerdict{
		FinalClass:      entity.NotPaddyLeaf,
		FinalClassIndex: -1,
		Quorum:          quorum,
		Voters:          len(predictions),
		Agreement:       PairwiseAgreement(predictions),
	}
	if len(predictions) == 0 {
		return verdict
	}

	counts := make(map[int]int)
	var order []int
	for _, p := range predictions {
		if _, seen := counts[p.ClassIndex]; !seen {
			order = append(order, p.ClassIndex)
		}
		counts[p.ClassIndex]++
	}

	mode := order[0]
	for _, class := range order[1:] {
		if counts[class] > counts[mode] {
			mode = class
		}
	}
	verdict.Votes = counts[mode]

	if quorum <= 0 || verdict.Votes < quorum {
		return verdict
	}

	best := -1
	for i, p := range predictions {
		if p.ClassIndex != mode {
			continue
		}
		if best < 0 || p.Confidence > predictions[best].Confidence {
			best = i
		}
	}

	verdict.IsPaddyLeaf = true
	verdict.FinalClass = labels.Name(mode)
	verdict.FinalClassIndex = mode
	verdict.FinalConfidence = predictions[best].Confidence
	verdict.BestModel = predictions[best].Model
	return verdict
}

// PairwiseAgreement scores every pair of models: 1 on the diagonal,
// (ci+cj)/200 when both chose the same class, 0 otherwise.
// Each unordered pair is computed once and mirrored.
func PairwiseAgreement(predictions []entity.PredictionResult) entity.AgreementMatrix {
	n := len(predictions)
	m := entity.AgreementMatrix{
		Models: make([]string, n),
		Scores: make([][]float64, n),
	}
	for i, p := range predictions {
		m.Models[i] = p.Model
		m.Scores[i] = make([]float64, n)
		m.Scores[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := pairScore(predictions[i], predictions[j])
			m.Scores[i][j] = score
			m.Scores[j][i] = score
		}
	}
	return m
}

func pairScore(a, b entity.PredictionResult) float64 {
	if a.ClassIndex != b.ClassIndex {
		return 0
	}
	return math.Max(0, math.Min(1, (a.Confidence+b.Confidence)/200))
}
