// Package config holds the settings capread is started with.
//
// A Config is built once at startup from defaults, an optional YAML file and
// the process environment (in that order of precedence), then passed by
// pointer to whatever needs it. Nothing else reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/capread/pkg/lines"
	yaml "go.yaml.in/yaml/v3"
)

type Config struct {
	// Provider selects the OCR provider: azure, google or tesseract
	Provider string `yaml:"provider"`

	Capture     CaptureConfig     `yaml:"capture"`
	Prepare     PrepareConfig     `yaml:"prepare"`
	Reconstruct ReconstructConfig `yaml:"reconstruct"`
	Audio       AudioConfig       `yaml:"audio"`
	Azure       AzureConfig       `yaml:"azure"`
	Google      GoogleConfig      `yaml:"google"`
	Tesseract   TesseractConfig   `yaml:"tesseract"`
}

type CaptureConfig struct {
	// UseTestFile reads TestImagePath instead of running Command
	UseTestFile   bool     `yaml:"use_test_file"`
	TestImagePath string   `yaml:"test_image_path"`
	Command       []string `yaml:"command"`
}

type PrepareConfig struct {
	// CropFraction is the share of the frame height kept when cropping to the bottom
	CropFraction float64 `yaml:"crop_fraction"`
	// Threshold is the gray level above which pixels become white
	Threshold int `yaml:"threshold"`
}

type ReconstructConfig struct {
	NameOffset int `yaml:"name_offset"`
}

type AudioConfig struct {
	// Path is where synthesized speech is written before playback
	Path   string   `yaml:"path"`
	Player []string `yaml:"player"`
}

type AzureConfig struct {
	OCR        AzureService `yaml:"ocr"`
	Translator AzureService `yaml:"translator"`
	Speech     AzureService `yaml:"speech"`
	Region     string       `yaml:"region"`
}

type AzureService struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type TesseractConfig struct {
	Language string `yaml:"language"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Provider: "azure",
		Capture: CaptureConfig{
			TestImagePath: "test_image.jpg",
			Command: []string{
				"ffmpeg", "-loglevel", "error", "-f", "v4l2",
				"-video_size", "3840x2160", "-i", "/dev/video0",
				"-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-",
			},
		},
		Prepare: PrepareConfig{
			CropFraction: 0.5,
			Threshold:    200,
		},
		Reconstruct: ReconstructConfig{
			NameOffset: lines.DefaultNameOffset,
		},
		Audio: AudioConfig{
			Path:   "output_audio.mp3",
			Player: []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
		},
		Tesseract: TesseractConfig{
			Language: "jpn",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("OCR_PROVIDER", &c.Provider)
	str("TEST_IMAGE_PATH", &c.Capture.TestImagePath)
	str("AUDIO_PATH", &c.Audio.Path)
	str("AZURE_OCR_URL", &c.Azure.OCR.URL)
	str("AZURE_OCR_KEY", &c.Azure.OCR.Key)
	str("AZURE_TRANSLATOR_URL", &c.Azure.Translator.URL)
	str("AZURE_TRANSLATOR_KEY", &c.Azure.Translator.Key)
	str("AZURE_TEXT_TO_SPEECH_URL", &c.Azure.Speech.URL)
	str("AZURE_TEXT_TO_SPEECH_KEY", &c.Azure.Speech.Key)
	str("AZURE_REGION", &c.Azure.Region)
	str("GOOGLE_APPLICATION_CREDENTIALS", &c.Google.CredentialsFile)
	str("TESSERACT_LANGUAGE", &c.Tesseract.Language)
	num("NAME_OFFSET", &c.Reconstruct.NameOffset)

	if v, ok := lookup("USE_TEST_FILE"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("USE_TEST_FILE: %w", err))
		} else {
			c.Capture.UseTestFile = b
		}
	}
	// THRESHOLD was historically a float
	if v, ok := lookup("THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("THRESHOLD: %w", err))
		} else {
			c.Prepare.Threshold = int(f)
		}
	}
	if v, ok := lookup("CROP_FRACTION"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("CROP_FRACTION: %w", err))
		} else {
			c.Prepare.CropFraction = f
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate checks value ranges and the credentials of the selected provider
func (c *Config) Validate() error {
	var errs []error

	if c.Reconstruct.NameOffset < 0 {
		errs = append(errs, fmt.Errorf("reconstruct.name_offset must not be negative, got %d", c.Reconstruct.NameOffset))
	}
	if c.Prepare.Threshold < 0 || c.Prepare.Threshold > 255 {
		errs = append(errs, fmt.Errorf("prepare.threshold must be between 0 and 255, got %d", c.Prepare.Threshold))
	}
	if c.Prepare.CropFraction <= 0 || c.Prepare.CropFraction > 1 {
		errs = append(errs, fmt.Errorf("prepare.crop_fraction must be in (0, 1], got %g", c.Prepare.CropFraction))
	}
	if c.Capture.UseTestFile && c.Capture.TestImagePath == "" {
		errs = append(errs, errors.New("capture.test_image_path is required when use_test_file is set"))
	}
	if !c.Capture.UseTestFile && len(c.Capture.Command) == 0 {
		errs = append(errs, errors.New("capture.command is required when use_test_file is not set"))
	}

	switch strings.ToLower(c.Provider) {
	case "azure":
		if c.Azure.OCR.URL == "" || c.Azure.OCR.Key == "" {
			errs = append(errs, errors.New("AZURE_OCR_URL and AZURE_OCR_KEY must be set for the azure provider"))
		}
	case "google", "tesseract":
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}

	return errors.Join(errs...)
}

// TranslationEnabled reports whether translator credentials are present
func (c *Config) TranslationEnabled() bool {
	return c.Azure.Translator.URL != "" && c.Azure.Translator.Key != ""
}

// SpeechEnabled reports whether speech synthesis credentials are present
func (c *Config) SpeechEnabled() bool {
	return c.Azure.Speech.URL != "" && c.Azure.Speech.Key != ""
}
