// Package google implements OCR with the Google Cloud Vision API.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// Annotator runs a single image annotation request
type Annotator interface {
	Annotate(ctx context.Context, req *visionpb.AnnotateImageRequest) (*visionpb.AnnotateImageResponse, error)
}

// clientAnnotator adapts the Vision client to Annotator
type clientAnnotator struct {
	client *vision.ImageAnnotatorClient
}

func (a clientAnnotator) Annotate(ctx context.Context, req *visionpb.AnnotateImageRequest) (*visionpb.AnnotateImageResponse, error) {
	resp, err := a.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("vision API returned no responses")
	}
	return resp.GetResponses()[0], nil
}

// Provider implements the Google Vision OCR provider
type Provider struct {
	annotator     Annotator
	languageHints []string
	close         func() error
}

// New dials the Vision API. An empty credentialsFile uses Application Default Credentials.
func New(ctx context.Context, credentialsFile string) (*Provider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	p := NewWithAnnotator(clientAnnotator{client: client})
	p.close = client.Close
	return p, nil
}

// NewWithAnnotator builds a provider around an existing Annotator
func NewWithAnnotator(a Annotator) *Provider {
	return &Provider{
		annotator:     a,
		languageHints: []string{"ja"},
		close:         func() error { return nil },
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "google"
}

// Close releases the underlying client
func (p *Provider) Close() error {
	return p.close()
}

// Detect runs TEXT_DETECTION and returns one detection per paragraph
func (p *Provider) Detect(ctx context.Context, image []byte, opts providers.Options) ([]lines.Detection, error) {
	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: image},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_TEXT_DETECTION},
		},
		ImageContext: &visionpb.ImageContext{LanguageHints: p.languageHints},
	}

	resp, err := p.annotator.Annotate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	if e := resp.GetError(); e != nil && e.GetCode() != 0 {
		return nil, fmt.Errorf("vision API error: %d - %s", e.GetCode(), e.GetMessage())
	}

	if opts.Debug {
		slog.Info("Raw OCR response", "provider", p.Name(), "text", resp.GetFullTextAnnotation().GetText())
	}

	return paragraphDetections(resp.GetFullTextAnnotation()), nil
}

func paragraphDetections(annotation *visionpb.TextAnnotation) []lines.Detection {
	var out []lines.Detection
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				d := lines.Detection{BoundingBox: boundingBox(paragraph.GetBoundingBox())}
				for _, word := range paragraph.GetWords() {
					var b strings.Builder
					for _, symbol := range word.GetSymbols() {
						b.WriteString(symbol.GetText())
					}
					d.Words = append(d.Words, b.String())
				}
				out = append(out, d)
			}
		}
	}
	return out
}

// boundingBox formats the axis aligned hull of poly as "x,y,width,height"
func boundingBox(poly *visionpb.BoundingPoly) string {
	vertices := poly.GetVertices()
	if len(vertices) == 0 {
		return "0,0,0,0"
	}

	minX, minY := int32(math.MaxInt32), int32(math.MaxInt32)
	maxX, maxY := int32(math.MinInt32), int32(math.MinInt32)
	for _, v := range vertices {
		minX = min(minX, v.GetX())
		minY = min(minY, v.GetY())
		maxX = max(maxX, v.GetX())
		maxY = max(maxY, v.GetY())
	}
	return fmt.Sprintf("%d,%d,%d,%d", minX, minY, maxX-minX, maxY-minY)
}
