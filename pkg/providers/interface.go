package providers

import (
	"context"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
)

// Options are per-call settings passed to a provider
type Options struct {
	// Debug logs the raw service response
	Debug bool
}

// Provider interface that all OCR providers must implement
type Provider interface {
	// Detect runs OCR on an encoded image and returns its lines in the
	// order the service reported them
	Detect(ctx context.Context, image []byte, opts Options) ([]lines.Detection, error)
	// Name returns the provider's name
	Name() string
}

// Validator is an optional interface for providers that can check their
// credentials before the first request
type Validator interface {
	Validate() error
}

// Validate runs the provider's validation if it has one
func Validate(p Provider) error {
	if v, ok := p.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// TruncateBody truncates a response body to a maximum length for error messages.
// Default maxLen is 500 if not specified.
func TruncateBody(body []byte, maxLen ...int) string {
	limit := 500
	if len(maxLen) > 0 && maxLen[0] > 0 {
		limit = maxLen[0]
	}
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "... (truncated)"
	}
	return s
}
