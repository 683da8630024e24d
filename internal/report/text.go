package report

import (
	"fmt"
	"sort"
	"strings"
)

const topK = 5

// Text renders the plain-text analysis report of a summary
func Text(s *Summary) string {
	var b strings.Builder
	rule := strings.Repeat("-", 30)

	b.WriteString("MULTI-MODEL EXPLAINABLE AI ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Image: %s\n", s.ImagePath)
	fmt.Fprintf(&b, "Analysis Date: %s\n\n", s.AnalysisDate)

	b.WriteString("FINAL DETERMINATION:\n")
	b.WriteString(rule + "\n")
	if s.IsPaddyLeaf {
		fmt.Fprintf(&b, "This is a paddy leaf with %s\n", s.FinalPrediction)
		best := ""
		if s.BestModel != nil {
			best = *s.BestModel
		}
		fmt.Fprintf(&b, "Highest confidence: %.2f%% from %s\n", s.FinalConfidence, best)
	} else {
		b.WriteString("This is NOT a paddy leaf\n")
		b.WriteString("Not enough model agreement to identify a paddy leaf disease\n")
	}
	fmt.Fprintf(&b, "Agreement: %d of %d models (quorum %d)\n", s.Quorum.Votes, s.Quorum.Voters, s.Quorum.Required)

	b.WriteString("\nMODEL PREDICTIONS:\n")
	b.WriteString(rule + "\n")
	for _, m := range s.Models {
		if p, ok := s.ModelPredictions[m]; ok {
			fmt.Fprintf(&b, "%s: %s (%.2f%%)\n", m, p.PredictedClass, p.Confidence)
		}
	}

	b.WriteString("\nDETAILED PREDICTIONS:\n")
	b.WriteString(rule + "\n")
	for _, m := range s.Models {
		p, ok := s.ModelPredictions[m]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", m)
		for _, e := range topPredictions(p, s.ranked[m], topK) {
			fmt.Fprintf(&b, "  %s: %.2f%%\n", e.label, e.value)
		}
	}

	if len(s.ModelFailures) > 0 {
		b.WriteString("\nMODEL FAILURES:\n")
		b.WriteString(rule + "\n")
		for _, m := range s.Models {
			if f, ok := s.ModelFailures[m]; ok {
				fmt.Fprintf(&b, "%s: %s failed: %s\n", m, f.Stage, f.Message)
			}
		}
	}

	if len(s.Files) > 0 {
		b.WriteString("\nGenerated Files:\n")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "- %s - %s\n", f, describeFile(f))
		}
	}

	return b.String()
}

type ranked struct {
	label string
	value float64
}

// topPredictions returns the k most probable classes, highest first.
// Equal values keep vocabulary order when it is known, else label order.
func topPredictions(p ModelPrediction, ordered []ranked, k int) []ranked {
	entries := make([]ranked, 0, len(p.AllPredictions))
	if ordered != nil {
		entries = append(entries, ordered...)
	} else {
		for label, v := range p.AllPredictions {
			entries = append(entries, ranked{label: label, value: v})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].label < entries[j].label })
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value > entries[j].value
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

func describeFile(name string) string {
	switch name {
	case ComparisonFile:
		return "Side-by-side model comparisons"
	case ConfidenceFile:
		return "Confidence scores across classes"
	case AgreementFile:
		return "Model agreement visualization"
	case SummaryFile:
		return "JSON summary of all results"
	case ReportFile:
		return "This report"
	default:
		if strings.HasSuffix(name, "_explanation.png") {
			return "Individual model explanation"
		}
		return "Artifact"
	}
}
