package render

import (
	"image"
	"image/color"
	"math"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// Colormap maps a value in [0,1] to a color
type Colormap func(v float64) color.NRGBA

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// Hot runs black, red, yellow, white
func Hot(v float64) color.NRGBA {
	v = clamp01(v)
	return color.NRGBA{R: to8(3 * v), G: to8(3*v - 1), B: to8(3*v - 2), A: 255}
}

// Jet runs blue, cyan, yellow, red
func Jet(v float64) color.NRGBA {
	v = clamp01(v)
	return color.NRGBA{
		R: to8(1.5 - math.Abs(4*v-3)),
		G: to8(1.5 - math.Abs(4*v-2)),
		B: to8(1.5 - math.Abs(4*v-1)),
		A: 255,
	}
}

var rdYlGn = [3][3]float64{
	{215, 48, 39},
	{255, 255, 191},
	{26, 152, 80},
}

// RdYlGn runs red, yellow, green
func RdYlGn(v float64) color.NRGBA {
	v = clamp01(v)
	lo, hi, t := rdYlGn[0], rdYlGn[1], v*2
	if v > 0.5 {
		lo, hi, t = rdYlGn[1], rdYlGn[2], (v-0.5)*2
	}
	mix := func(a, b float64) uint8 { return uint8(math.Round(a + (b-a)*t)) }
	return color.NRGBA{R: mix(lo[0], hi[0]), G: mix(lo[1], hi[1]), B: mix(lo[2], hi[2]), A: 255}
}

// Heatmap paints a saliency map with a colormap
func Heatmap(s *entity.SaliencyMap, cm Colormap) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.SetNRGBA(x, y, cm(s.At(y, x)))
		}
	}
	return img
}
