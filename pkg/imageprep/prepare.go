package imageprep

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Options select the preprocessing steps applied before OCR
type Options struct {
	// CropBottom keeps only the bottom CropFraction of the frame, where
	// subtitles and dialogue boxes usually are
	CropBottom   bool
	CropFraction float64
	// ColorCorrect converts to grayscale and binarizes at Threshold,
	// isolating bright text on dark backgrounds
	ColorCorrect bool
	Threshold    uint8
}

func (o Options) enabled() bool {
	return o.CropBottom || o.ColorCorrect
}

// Prepare applies opts to an encoded image and returns it re-encoded as JPEG.
// With no step enabled the input is returned untouched.
func Prepare(data []byte, opts Options) ([]byte, error) {
	if !opts.enabled() {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if opts.CropBottom {
		img, err = cropBottom(img, opts.CropFraction)
		if err != nil {
			return nil, err
		}
	}
	if opts.ColorCorrect {
		img = segment.Threshold(img, opts.Threshold)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func cropBottom(img image.Image, fraction float64) (image.Image, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("crop fraction must be in (0, 1], got %g", fraction)
	}
	b := img.Bounds()
	keep := int(math.Round(float64(b.Dy()) * fraction))
	if keep < 1 {
		keep = 1
	}
	return imaging.Crop(img, image.Rect(b.Min.X, b.Max.Y-keep, b.Max.X, b.Max.Y)), nil
}
