package render

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// OverlayAlpha is the heatmap opacity over the original image
const OverlayAlpha = 0.4

// CellSize is the panel edge length of the comparison grid
const CellSize = 224

// Panel describes one model's row in explanation images
type Panel struct {
	Model      string
	Class      string
	Confidence float64
	// Saliency is nil when attribution failed
	Saliency *entity.SaliencyMap
	// Failure is set when the model produced no prediction
	Failure *entity.ModelFailure
}

// Overlay blends a jet-colored saliency map over the original image
func Overlay(original image.Image, s *entity.SaliencyMap) *image.NRGBA {
	base := imaging.Resize(original, s.Width, s.Height, imaging.Lanczos)
	return imaging.Overlay(base, Heatmap(s, Jet), image.Pt(0, 0), OverlayAlpha)
}

// Explanation renders original, hot heatmap and jet overlay side by side
func Explanation(original image.Image, p Panel) *image.NRGBA {
	s := p.Saliency
	w, h := s.Width, s.Height
	top := 2*lineHeight + margin

	canvas := imaging.New(3*w+4*margin, top+lineHeight+h+margin, white)
	drawCentered(canvas, canvas.Bounds().Dx()/2, lineHeight+4,
		fmt.Sprintf("%s: %s (%.1f%%)", p.Model, p.Class, p.Confidence), black)

	panels := []struct {
		title string
		img   image.Image
	}{
		{"Original Image", imaging.Resize(original, w, h, imaging.Lanczos)},
		{p.Model + " Heatmap", Heatmap(s, Hot)},
		{p.Model + " Overlay", Overlay(original, s)},
	}
	for i, panel := range panels {
		x := margin + i*(w+margin)
		drawCentered(canvas, x+w/2, top+lineHeight-4, panel.title, black)
		canvas = imaging.Paste(canvas, panel.img, image.Pt(x, top+lineHeight))
	}
	return canvas
}

// Comparison renders one row per model: original (first row only),
// heatmap, overlay and a caption.
func Comparison(original image.Image, panels []Panel) *image.NRGBA {
	header := 2*lineHeight + margin
	rowH := CellSize + lineHeight + margin
	width := 4*CellSize + 5*margin
	canvas := imaging.New(width, header+len(panels)*rowH+margin, white)

	drawCentered(canvas, width/2, lineHeight+4, "Multi-Model Explainable AI Analysis", black)
	thumb := imaging.Resize(original, CellSize, CellSize, imaging.Lanczos)

	for i, p := range panels {
		y := header + i*rowH
		col := func(c int) int { return margin + c*(CellSize+margin) }

		if i == 0 {
			drawCentered(canvas, col(0)+CellSize/2, y+lineHeight-4, "Original Image", black)
			canvas = imaging.Paste(canvas, thumb, image.Pt(col(0), y+lineHeight))
		}

		switch {
		case p.Failure != nil:
			drawText(canvas, col(1), y+lineHeight+CellSize/2, fmt.Sprintf("%s: %s failed", p.Model, p.Failure.Stage), black)
		case p.Saliency == nil:
			drawText(canvas, col(1), y+lineHeight+CellSize/2, p.Model+": explanation unavailable", black)
		default:
			heat := imaging.Resize(Heatmap(p.Saliency, Hot), CellSize, CellSize, imaging.Linear)
			over := imaging.Resize(Overlay(original, p.Saliency), CellSize, CellSize, imaging.Linear)
			drawCentered(canvas, col(1)+CellSize/2, y+lineHeight-4, p.Model+" Heatmap", black)
			drawCentered(canvas, col(2)+CellSize/2, y+lineHeight-4, p.Model+" Overlay", black)
			canvas = imaging.Paste(canvas, heat, image.Pt(col(1), y+lineHeight))
			canvas = imaging.Paste(canvas, over, image.Pt(col(2), y+lineHeight))
		}

		if p.Failure == nil {
			ty := y + lineHeight + CellSize/2 - lineHeight
			drawText(canvas, col(3), ty, "Model: "+p.Model, black)
			drawText(canvas, col(3), ty+lineHeight, "Prediction: "+p.Class, black)
			drawText(canvas, col(3), ty+2*lineHeight, fmt.Sprintf("Confidence: %.1f%%", p.Confidence), black)
		}
	}
	return canvas
}
