package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultMaxDimension bounds decoded frames to a typical preview-video size so
// still photos cost the same to analyze as live frames.
const DefaultMaxDimension = 1280

// ErrTooLarge is returned for encoded frames whose declared size exceeds the
// decode budget
var ErrTooLarge = errors.New("image too large")

// PixelBudget is the largest source image, in pixels, decoded for a given
// maxDim: four times maxDim on each side. A maxDim <= 0 uses
// DefaultMaxDimension.
func PixelBudget(maxDim int) int {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	side := 4 * maxDim
	return side * side
}

// FromImage converts any image into a PixelBuffer with non-premultiplied
// RGBA bytes, the same layout a canvas ImageData exposes.
func FromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()

	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*BytesPerPixel {
		return &PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pix: n.Pix}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// ToImage wraps the buffer as an image without copying
func (b *PixelBuffer) ToImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Decode reads an encoded frame, applies its EXIF orientation and fits it
// inside maxDim x maxDim. A maxDim <= 0 disables resizing.
func Decode(r io.Reader, maxDim int) (*PixelBuffer, Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read image: %w", err)
	}
	return DecodeBytes(data, maxDim)
}

// DecodeBytes is Decode for an in-memory frame. The header is checked
// against PixelBudget(maxDim) before any pixels are decoded.
func DecodeBytes(data []byte, maxDim int) (*PixelBuffer, Metadata, error) {
	meta := ReadMetadata(data)

	conf, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, meta, fmt.Errorf("failed to decode image: %w", err)
	}
	if conf.Width <= 0 || conf.Height <= 0 {
		return nil, meta, fmt.Errorf("failed to decode image: empty %dx%d image", conf.Width, conf.Height)
	}
	budget := PixelBudget(maxDim)
	if conf.Width > budget/conf.Height {
		return nil, meta, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, conf.Width, conf.Height, budget)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, meta, fmt.Errorf("failed to decode image: %w", err)
	}

	img = Orient(img, meta.Orientation)
	img = Fit(img, maxDim)

	return FromImage(img), meta, nil
}

// Load reads and decodes an image file
func Load(path string, maxDim int) (*PixelBuffer, Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read image file: %w", err)
	}
	return DecodeBytes(data, maxDim)
}

// Orient applies an EXIF orientation value (1-8) to the image
func Orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Fit downsizes the image to fit inside maxDim x maxDim, preserving aspect
// ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// SaveCrop writes the given region of the buffer to path. The format is
// chosen from the file extension.
func SaveCrop(buf *PixelBuffer, region Region, path string) error {
	region = region.Clamp(buf.Width, buf.Height)
	if region.Empty() {
		return fmt.Errorf("failed to crop: empty region %+v", region)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create crop directory: %w", err)
	}

	cropped := imaging.Crop(buf.ToImage(), region.Rect())
	if err := imaging.Save(cropped, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save crop: %w", err)
	}
	return nil
}
