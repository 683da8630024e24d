package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
)

// ErrEmptyImage is returned for zero-length uploads
var ErrEmptyImage = errors.New("empty image")

// DefaultMaxPixels bounds the decoded size of an upload
const DefaultMaxPixels = 40_000_000

// Decoder decodes uploads after checking their header dimensions
type Decoder struct {
	maxPixels int64
}

// NewDecoder creates a decoder rejecting images above maxPixels.
// A non-positive limit falls back to DefaultMaxPixels.
func NewDecoder(maxPixels int64) *Decoder {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Decoder{maxPixels: maxPixels}
}

// Decode decodes an uploaded image with the default pixel limit
func Decode(data []byte) (image.Image, string, error) {
	return NewDecoder(DefaultMaxPixels).Decode(data)
}

// Decode decodes an uploaded image in any registered format
func (d *Decoder) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", ErrEmptyImage
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > d.maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d is more than %d pixels", entity.ErrImageTooLarge, cfg.Width, cfg.Height, d.maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", ErrEmptyImage
	}
	return img, format, nil
}

// Resize scales img to the given model input size, ignoring aspect ratio
func Resize(img image.Image, size entity.Size) image.Image {
	b := img.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		return img
	}
	return resize.Resize(uint(size.Width), uint(size.Height), img, resize.Bilinear)
}

// ToTensor converts img to a [1, H, W, 3] RGB tensor with values in [0, 255]
func ToTensor(img image.Image) *entity.Tensor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := entity.NewImageTensor(h, w, 3)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			t.Data[i] = float32(r >> 8)
			t.Data[i+1] = float32(g >> 8)
			t.Data[i+2] = float32(bl >> 8)
			i += 3
		}
	}
	return t
}

// Load resizes img to size and returns its raw RGB tensor
func Load(img image.Image, size entity.Size) *entity.Tensor {
	return ToTensor(Resize(img, size))
}
