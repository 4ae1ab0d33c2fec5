package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/capread/internal/config"
	"github.com/lehigh-university-libraries/capread/internal/utils"
	"github.com/lehigh-university-libraries/capread/pkg/azure"
	"github.com/lehigh-university-libraries/capread/pkg/imageprep"
	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/lehigh-university-libraries/capread/pkg/pipeline"
	"github.com/lehigh-university-libraries/capread/pkg/playback"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Capture one frame, OCR it and speak the text",
	Long: `Run one capture cycle: grab a frame (or read a test image), OCR it,
reconstruct the text, optionally translate it and speak it.`,
	RunE: runRead,
}

var (
	readImage           string
	readHalf            bool
	readColorCorrection bool
	readTranslate       bool
	readEnglish         bool
	readFinnish         bool
	readDebug           bool
	readProvider        string
	readMute            bool
)

func init() {
	RootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVar(&readImage, "image", "", "Read this image instead of capturing a frame")
	readCmd.Flags().BoolVar(&readHalf, "half", false, "Only OCR the bottom part of the frame")
	readCmd.Flags().BoolVar(&readColorCorrection, "color-correction", false, "Grayscale and threshold the frame before OCR")
	readCmd.Flags().BoolVar(&readTranslate, "translate", false, "Translate the text to English, Finnish and Swedish")
	readCmd.Flags().BoolVar(&readEnglish, "english", false, "Speak the English translation")
	readCmd.Flags().BoolVar(&readFinnish, "finnish", false, "Speak the Finnish translation")
	readCmd.Flags().BoolVar(&readDebug, "debug", false, "Log raw OCR responses")
	readCmd.Flags().StringVar(&readProvider, "provider", "", "OCR provider: azure, google or tesseract (overrides config)")
	readCmd.Flags().BoolVar(&readMute, "mute", false, "Write speech audio without playing it")
}

func runRead(cmd *cobra.Command, args []string) error {
	if readProvider != "" {
		cfg.Provider = readProvider
	}
	if readImage != "" {
		cfg.Capture.UseTestFile = true
		cfg.Capture.TestImagePath = readImage
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	provider, cleanup, err := newProvider(ctx, cfg)
	if err != nil {
		return utils.MaskSensitiveError(err)
	}
	defer cleanup()

	runner := newRunner(cfg, provider)
	runner.Out = cmd.OutOrStdout()
	if readMute {
		runner.Player = nil
	}

	opts := pipeline.Options{
		PlaybackEnglish: readEnglish,
		PlaybackFinnish: readFinnish,
		Translate:       readTranslate,
		HalfScreen:      readHalf,
		ColorCorrection: readColorCorrection,
		Debug:           readDebug,
	}
	if opts.Translate && runner.Translator == nil {
		slog.Warn("Translation requested but AZURE_TRANSLATOR_URL or AZURE_TRANSLATOR_KEY is not set")
	}

	if _, err := runner.Run(ctx, opts); err != nil {
		return utils.MaskSensitiveError(err)
	}
	return nil
}

// newRunner wires the collaborators the configuration has credentials for
func newRunner(c *config.Config, provider providers.Provider) *pipeline.Runner {
	var source imageprep.Source = imageprep.CommandSource{Args: c.Capture.Command}
	if c.Capture.UseTestFile {
		source = imageprep.FileSource{Path: c.Capture.TestImagePath}
	}

	r := &pipeline.Runner{
		Source: source,
		Prepare: imageprep.Options{
			CropFraction: c.Prepare.CropFraction,
			Threshold:    uint8(c.Prepare.Threshold),
		},
		Provider:      provider,
		Reconstructor: lines.New(c.Reconstruct.NameOffset),
		AudioPath:     c.Audio.Path,
		Out:           os.Stdout,
	}
	if c.TranslationEnabled() {
		r.Translator = azure.NewTranslator(c.Azure.Translator.URL, c.Azure.Translator.Key, c.Azure.Region)
	}
	if c.SpeechEnabled() {
		r.Synthesizer = azure.NewSynthesizer(c.Azure.Speech.URL, c.Azure.Speech.Key)
		if len(c.Audio.Player) > 0 {
			r.Player = playback.CommandPlayer{Args: c.Audio.Player}
		}
	}
	return r
}
