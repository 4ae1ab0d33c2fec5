//go:build tesseract

package tesseract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// Provider implements the local Tesseract OCR provider
type Provider struct {
	language string
}

// New creates a provider for a Tesseract language code such as "jpn"
func New(language string) *Provider {
	return &Provider{language: language}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "tesseract"
}

// Detect runs Tesseract on the encoded image and returns its text lines
func (p *Provider) Detect(ctx context.Context, image []byte, opts providers.Options) ([]lines.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	found := make([]Line, 0, len(boxes))
	for _, box := range boxes {
		if opts.Debug {
			slog.Info("Raw OCR line", "provider", p.Name(), "box", box.Box.String(), "text", box.Word, "confidence", box.Confidence)
		}
		found = append(found, Line{Box: box.Box, Text: box.Word})
	}
	return Detections(found), nil
}
