package azure

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/capread/pkg/language"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// OutputFormat is the audio format requested from the speech service
const OutputFormat = "audio-16khz-128kbitrate-mono-mp3"

// Voices maps each language to its Azure neural voice
var Voices = map[language.Language]string{
	language.Japanese: "ja-JP-NanamiNeural",
	language.English:  "en-US-AvaMultilingualNeural",
	language.Finnish:  "fi-FI-SelmaNeural",
	language.Swedish:  "sv-SE-SofieNeural",
}

// Synthesizer calls the Azure Speech text-to-speech REST endpoint
type Synthesizer struct {
	url    string
	key    string
	client *http.Client
}

// NewSynthesizer creates a synthesizer for the endpoint URL, e.g.
// https://<region>.tts.speech.microsoft.com/cognitiveservices/v1
func NewSynthesizer(endpoint, key string) *Synthesizer {
	return &Synthesizer{
		url:    endpoint,
		key:    key,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize returns MP3 audio of text spoken in lang
func (s *Synthesizer) Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	if s.url == "" || s.key == "" {
		return nil, fmt.Errorf("AZURE_TEXT_TO_SPEECH_URL and AZURE_TEXT_TO_SPEECH_KEY must be set")
	}

	ssml, err := buildSSML(text, lang)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(ssml))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", OutputFormat)
	req.Header.Set("User-Agent", "capread")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure speech API error: %d - %s", resp.StatusCode, providers.TruncateBody(body))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("azure speech returned no audio")
	}
	return body, nil
}

func buildSSML(text string, lang language.Language) (string, error) {
	voice, ok := Voices[lang]
	if !ok {
		return "", fmt.Errorf("no voice for language %v", lang)
	}
	tag := lang.Tag().String()

	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", fmt.Errorf("failed to escape text: %w", err)
	}

	return fmt.Sprintf("<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' xml:gender='Female' name='%s'>%s</voice></speak>",
		tag, tag, voice, escaped.String()), nil
}
