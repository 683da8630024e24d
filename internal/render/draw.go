package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

const (
	lineHeight = 16
	margin     = 12
)

var face font.Face = basicfont.Face7x13

// textWidth returns the rendered width of s in pixels
func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawText writes s with its baseline at (x, y)
func drawText(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawCentered writes s horizontally centered on cx
func drawCentered(dst draw.Image, cx, y int, s string, c color.Color) {
	drawText(dst, cx-textWidth(s)/2, y, s, c)
}
