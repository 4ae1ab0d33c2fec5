package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// OCRClient implements the Azure Computer Vision OCR provider
type OCRClient struct {
	url    string
	key    string
	client *http.Client
}

// ocrResponse is the body returned by the Computer Vision v3.2 OCR endpoint
type ocrResponse struct {
	Language string `json:"language"`
	Regions  []struct {
		Lines []struct {
			BoundingBox string `json:"boundingBox"`
			Words       []struct {
				Text *string `json:"text"`
			} `json:"words"`
		} `json:"lines"`
	} `json:"regions"`
}

// NewOCR creates an OCR client for the full endpoint URL, e.g.
// https://<resource>.cognitiveservices.azure.com/vision/v3.2/ocr?language=ja
func NewOCR(url, key string) *OCRClient {
	return &OCRClient{
		url:    url,
		key:    key,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the provider name
func (c *OCRClient) Name() string {
	return "azure"
}

// Validate checks that an endpoint and key were configured
func (c *OCRClient) Validate() error {
	if c.url == "" || c.key == "" {
		return fmt.Errorf("AZURE_OCR_URL and AZURE_OCR_KEY must be set")
	}
	return nil
}

// Detect sends the image to Azure OCR and flattens regions and lines into detections
func (c *OCRClient) Detect(ctx context.Context, image []byte, opts providers.Options) ([]lines.Detection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure OCR API error: %d - %s", resp.StatusCode, providers.TruncateBody(body))
	}

	if opts.Debug {
		slog.Info("Raw OCR response", "provider", c.Name(), "body", string(body))
	}

	var result ocrResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w - body: %s", err, providers.TruncateBody(body))
	}

	return result.detections(), nil
}

func (r ocrResponse) detections() []lines.Detection {
	var out []lines.Detection
	for _, region := range r.Regions {
		for _, line := range region.Lines {
			d := lines.Detection{BoundingBox: line.BoundingBox}
			if line.Words != nil {
				d.Words = make([]string, 0, len(line.Words))
				for _, w := range line.Words {
					text := ""
					if w.Text != nil {
						text = *w.Text
					}
					d.Words = append(d.Words, text)
				}
			}
			out = append(out, d)
		}
	}
	return out
}

// ParseOCRResponse decodes a saved Azure OCR response body into detections
func ParseOCRResponse(body []byte) ([]lines.Detection, error) {
	var result ocrResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse azure OCR response: %w", err)
	}
	return result.detections(), nil
}
