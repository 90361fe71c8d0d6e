package frame

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is the subset of EXIF data relevant to still-frame analysis
type Metadata struct {
	Orientation int       `json:"orientation"`
	CapturedAt  time.Time `json:"captured_at,omitempty"`
	CameraModel string    `json:"camera_model,omitempty"`
	HasExif     bool      `json:"has_exif"`
}

// ReadMetadata extracts orientation, capture time and camera model from the
// encoded image. Images without EXIF (PNG, webcam JPEGs) return a
// Metadata with Orientation 1. Partially corrupt EXIF keeps whatever tags
// could be read.
func ReadMetadata(data []byte) Metadata {
	meta := Metadata{Orientation: 1}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && exif.IsCriticalError(err) {
		// No EXIF block at all is the normal case for video frames
		return meta
	}
	meta.HasExif = true

	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil && v >= 1 && v <= 8 {
			meta.Orientation = v
		}
	}

	if ts, err := x.DateTime(); err == nil {
		meta.CapturedAt = ts
	}

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			meta.CameraModel = model
		}
	}

	return meta
}
