package render

import (
	"image"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/report"
)

// Artifacts renders every image of one analysis, keyed by file name
func Artifacts(original image.Image, panels []Panel, labels []string, series []Series, agreement entity.AgreementMatrix) (map[string][]byte, error) {
	out := make(map[string][]byte)
	add := func(name string, img image.Image) error {
		data, err := EncodePNG(img)
		if err != nil {
			return err
		}
		out[name] = data
		return nil
	}

	for _, p := range panels {
		if p.Saliency == nil || p.Failure != nil {
			continue
		}
		if err := add(report.ExplanationFile(p.Model), Explanation(original, p)); err != nil {
			return nil, err
		}
	}

	if err := add(report.ComparisonFile, Comparison(original, panels)); err != nil {
		return nil, err
	}
	if len(series) > 0 {
		chart, err := ConfidenceChart(labels, series)
		if err != nil {
			return nil, err
		}
		if err := add(report.ConfidenceFile, chart); err != nil {
			return nil, err
		}
	}
	if len(agreement.Models) > 0 {
		matrix, err := AgreementMatrix(agreement)
		if err != nil {
			return nil, err
		}
		if err := add(report.AgreementFile, matrix); err != nil {
			return nil, err
		}
	}
	return out, nil
}
