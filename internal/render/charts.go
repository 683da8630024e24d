package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// ChartDPI is the raster resolution of rendered charts
const ChartDPI = 96

// Series is one model's per-class confidence in percent
type Series struct {
	Model  string
	Values []float64
}

var seriesColors = []color.Color{
	color.NRGBA{31, 119, 180, 255},
	color.NRGBA{255, 127, 14, 255},
	color.NRGBA{44, 160, 44, 255},
	color.NRGBA{214, 39, 40, 255},
	color.NRGBA{148, 103, 189, 255},
	color.NRGBA{140, 86, 75, 255},
	color.NRGBA{227, 119, 194, 255},
	color.NRGBA{127, 127, 127, 255},
	color.NRGBA{188, 189, 34, 255},
	color.NRGBA{23, 190, 207, 255},
}

// ConfidenceChart plots every model's class confidences as a line chart
func ConfidenceChart(labels []string, series []Series) (image.Image, error) {
	p := plot.New()
	p.Title.Text = "Model Confidence Comparison Across Classes"
	p.Y.Label.Text = "Confidence (%)"
	p.Y.Min, p.Y.Max = 0, 100
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, s := range series {
		n := min(len(s.Values), len(labels))
		xys := make(plotter.XYs, n)
		for j := 0; j < n; j++ {
			xys[j].X = float64(j)
			xys[j].Y = 100 * clamp01(s.Values[j]/100)
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("confidence series %s: %w", s.Model, err)
		}
		c := seriesColors[i%len(seriesColors)]
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(2)
		points.GlyphStyle.Color = c
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(s.Model, line, points)
	}

	if len(labels) > 0 {
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 6
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	return rasterize(p, 10*vg.Inch, 6*vg.Inch)
}

// agreementGrid exposes an agreement matrix as a heat map grid.
// Row 0 of the matrix is drawn at the top.
type agreementGrid struct {
	m entity.AgreementMatrix
}

func (g agreementGrid) Dims() (c, r int) {
	n := len(g.m.Models)
	return n, n
}

func (g agreementGrid) Z(c, r int) float64 {
	n := len(g.m.Models)
	return clamp01(g.m.Scores[n-1-r][c])
}

func (g agreementGrid) X(c int) float64 { return float64(c) }

func (g agreementGrid) Y(r int) float64 { return float64(r) }

// rdYlGnPalette samples RdYlGn into n colors
type rdYlGnPalette int

func (n rdYlGnPalette) Colors() []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = RdYlGn(float64(i) / float64(max(int(n)-1, 1)))
	}
	return out
}

// AgreementMatrix draws the pairwise agreement grid with each score annotated
func AgreementMatrix(m entity.AgreementMatrix) (image.Image, error) {
	n := len(m.Models)
	if n == 0 {
		return nil, fmt.Errorf("agreement matrix has no models")
	}

	p := plot.New()
	p.Title.Text = "Model Agreement Matrix"

	heat := plotter.NewHeatMap(agreementGrid{m: m}, rdYlGnPalette(64))
	heat.Min, heat.Max = 0, 1
	p.Add(heat)

	var xys plotter.XYs
	var texts []string
	for i := range m.Models {
		for j := range m.Models {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			texts = append(texts, fmt.Sprintf("%.2f", clamp01(m.Scores[i][j])))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("agreement labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	rows := make([]string, n)
	for i, name := range m.Models {
		rows[n-1-i] = name
	}
	p.NominalX(m.Models...)
	p.NominalY(rows...)

	side := vg.Length(n)*1.4*vg.Inch + 2*vg.Inch
	return rasterize(p, side, side)
}

func rasterize(p *plot.Plot, w, h vg.Length) (image.Image, error) {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(ChartDPI), vgimg.UseBackgroundColor(white))
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// EncodePNG encodes img as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
