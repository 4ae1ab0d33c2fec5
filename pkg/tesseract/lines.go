// Package tesseract runs OCR locally with Tesseract through gosseract.
//
// The provider itself needs cgo and libtesseract, so it is only compiled with
// the "tesseract" build tag:
//
//	go build -tags tesseract .
//
// Training data for the configured language (jpn by default) must be
// installed, e.g. apt-get install tesseract-ocr-jpn.
package tesseract

import (
	"fmt"
	"image"
	"strings"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
)

// Line is one text line box reported by Tesseract
type Line struct {
	Box  image.Rectangle
	Text string
}

// Detections converts Tesseract text lines into detections. Tesseract
// separates recognized glyphs with spaces, so each line's text is split
// into words on whitespace.
func Detections(found []Line) []lines.Detection {
	out := make([]lines.Detection, 0, len(found))
	for _, l := range found {
		out = append(out, lines.Detection{
			BoundingBox: fmt.Sprintf("%d,%d,%d,%d", l.Box.Min.X, l.Box.Min.Y, l.Box.Dx(), l.Box.Dy()),
			Words:       strings.Fields(l.Text),
		})
	}
	return out
}
