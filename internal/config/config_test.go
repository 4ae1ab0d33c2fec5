package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Reconstruct.NameOffset != 60 {
		t.Errorf("default name offset = %d, want 60", cfg.Reconstruct.NameOffset)
	}
	if cfg.Prepare.CropFraction != 0.5 {
		t.Errorf("default crop fraction = %g, want 0.5", cfg.Prepare.CropFraction)
	}
	if cfg.Audio.Path != "output_audio.mp3" {
		t.Errorf("default audio path = %q", cfg.Audio.Path)
	}
	if cfg.Provider != "azure" {
		t.Errorf("default provider = %q", cfg.Provider)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"AZURE_OCR_URL":            "https://example.cognitiveservices.azure.com/vision/v3.2/ocr",
		"AZURE_OCR_KEY":            "ocr-key",
		"AZURE_TRANSLATOR_URL":     "https://api.cognitive.microsofttranslator.com/translate?api-version=3.0",
		"AZURE_TRANSLATOR_KEY":     "tr-key",
		"AZURE_REGION":             "westeurope",
		"AZURE_TEXT_TO_SPEECH_URL": "https://westeurope.tts.speech.microsoft.com/cognitiveservices/v1",
		"AZURE_TEXT_TO_SPEECH_KEY": "tts-key",
		"USE_TEST_FILE":            "true",
		"THRESHOLD":                "180.0",
		"NAME_OFFSET":              "90",
		"CROP_FRACTION":            "0.25",
		"OCR_PROVIDER":             "google",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Azure.OCR.Key != "ocr-key" || cfg.Azure.Translator.Key != "tr-key" || cfg.Azure.Speech.Key != "tts-key" {
		t.Errorf("keys not applied: %+v", cfg.Azure)
	}
	if cfg.Azure.Region != "westeurope" {
		t.Errorf("region = %q", cfg.Azure.Region)
	}
	if !cfg.Capture.UseTestFile {
		t.Error("USE_TEST_FILE not applied")
	}
	if cfg.Prepare.Threshold != 180 {
		t.Errorf("threshold = %d, want 180", cfg.Prepare.Threshold)
	}
	if cfg.Reconstruct.NameOffset != 90 {
		t.Errorf("name offset = %d, want 90", cfg.Reconstruct.NameOffset)
	}
	if cfg.Prepare.CropFraction != 0.25 {
		t.Errorf("crop fraction = %g", cfg.Prepare.CropFraction)
	}
	if cfg.Provider != "google" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if !cfg.TranslationEnabled() || !cfg.SpeechEnabled() {
		t.Error("expected translation and speech to be enabled")
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"USE_TEST_FILE": "maybe",
		"NAME_OFFSET":   "sixty",
		"THRESHOLD":     "bright",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"USE_TEST_FILE", "NAME_OFFSET", "THRESHOLD"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected error to mention %s, got: %v", key, err)
		}
	}
	if cfg.Reconstruct.NameOffset != 60 {
		t.Errorf("invalid value should leave default, got %d", cfg.Reconstruct.NameOffset)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capread.yaml")
	yamlData := `provider: tesseract
reconstruct:
  name_offset: 120
prepare:
  threshold: 150
audio:
  path: /tmp/speech.mp3
azure:
  region: eastus
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NAME_OFFSET", "75")
	t.Setenv("AZURE_REGION", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "tesseract" {
		t.Errorf("provider = %q, want tesseract from file", cfg.Provider)
	}
	if cfg.Reconstruct.NameOffset != 75 {
		t.Errorf("name offset = %d, want env value 75", cfg.Reconstruct.NameOffset)
	}
	if cfg.Prepare.Threshold != 150 {
		t.Errorf("threshold = %d, want 150", cfg.Prepare.Threshold)
	}
	if cfg.Prepare.CropFraction != 0.5 {
		t.Errorf("crop fraction = %g, want default", cfg.Prepare.CropFraction)
	}
	if cfg.Azure.Region != "eastus" {
		t.Errorf("empty env value should not override file, got %q", cfg.Azure.Region)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Azure.OCR = AzureService{URL: "https://ocr", Key: "k"}
		return cfg
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{"valid", func(c *Config) {}, ""},
		{"negative offset", func(c *Config) { c.Reconstruct.NameOffset = -1 }, "name_offset"},
		{"threshold too high", func(c *Config) { c.Prepare.Threshold = 256 }, "threshold"},
		{"zero crop fraction", func(c *Config) { c.Prepare.CropFraction = 0 }, "crop_fraction"},
		{"missing azure key", func(c *Config) { c.Azure.OCR.Key = "" }, "AZURE_OCR_KEY"},
		{"google needs no azure", func(c *Config) { c.Provider = "google"; c.Azure.OCR = AzureService{} }, ""},
		{"unknown provider", func(c *Config) { c.Provider = "abbyy" }, "unknown provider"},
		{"test file without path", func(c *Config) { c.Capture.UseTestFile = true; c.Capture.TestImagePath = "" }, "test_image_path"},
		{"camera without command", func(c *Config) { c.Capture.Command = nil }, "capture.command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("expected error containing %q, got: %v", tt.errorContains, err)
			}
		})
	}
}
