package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lehigh-university-libraries/capread/pkg/language"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// Translator calls the Azure Translator v3 translate endpoint
type Translator struct {
	url    string
	key    string
	region string
	from   language.Language
	client *http.Client
}

type translateRequest struct {
	Text string `json:"Text"`
}

type translateResponse []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// NewTranslator creates a translator for the endpoint URL, e.g.
// https://api.cognitive.microsofttranslator.com/translate?api-version=3.0
// Source text is treated as Japanese.
func NewTranslator(endpoint, key, region string) *Translator {
	return &Translator{
		url:    endpoint,
		key:    key,
		region: region,
		from:   language.Japanese,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Translate translates text into every target in a single request.
// No targets means no request and an empty result.
func (t *Translator) Translate(ctx context.Context, text string, targets []language.Language) (language.Translations, error) {
	out := language.Translations{}
	if len(targets) == 0 {
		return out, nil
	}
	if t.url == "" || t.key == "" {
		return nil, fmt.Errorf("AZURE_TRANSLATOR_URL and AZURE_TRANSLATOR_KEY must be set")
	}

	reqURL, err := t.requestURL(targets)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal([]translateRequest{{Text: text}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", t.key)
	if t.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure translator API error: %d - %s", resp.StatusCode, providers.TruncateBody(body))
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w - body: %s", err, providers.TruncateBody(body))
	}
	if len(parsed) == 0 {
		slog.Warn("Did not get translations")
		return out, nil
	}

	for _, tr := range parsed[0].Translations {
		lang, err := language.Parse(tr.To)
		if err != nil {
			slog.Debug("Ignoring translation", "to", tr.To)
			continue
		}
		out[lang] = tr.Text
	}
	return out, nil
}

func (t *Translator) requestURL(targets []language.Language) (string, error) {
	u, err := url.Parse(t.url)
	if err != nil {
		return "", fmt.Errorf("invalid translator URL: %w", err)
	}
	q := u.Query()
	if q.Get("api-version") == "" {
		q.Set("api-version", "3.0")
	}
	if q.Get("from") == "" {
		q.Set("from", t.from.Code())
	}
	for _, l := range targets {
		q.Add("to", l.Code())
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
