// Package pipeline runs one capture cycle: capture, OCR, line reconstruction,
// translation, speech and playback.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/capread/pkg/imageprep"
	"github.com/lehigh-university-libraries/capread/pkg/language"
	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
)

// Translator translates text into every target language
type Translator interface {
	Translate(ctx context.Context, text string, targets []language.Language) (language.Translations, error)
}

// Synthesizer turns text into encoded audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error)
}

// Player plays an audio file and returns when playback has finished
type Player interface {
	Play(ctx context.Context, path string) error
}

// Options toggle behavior for a single cycle
type Options struct {
	PlaybackEnglish bool
	PlaybackFinnish bool
	Translate       bool
	HalfScreen      bool
	ColorCorrection bool
	Debug           bool
}

// Runner holds the collaborators of a cycle. Translator, Synthesizer and
// Player are optional; a nil one skips its step.
type Runner struct {
	Source        imageprep.Source
	Prepare       imageprep.Options
	Provider      providers.Provider
	Reconstructor lines.Reconstructor
	Translator    Translator
	Synthesizer   Synthesizer
	Player        Player
	AudioPath     string
	Out           io.Writer
}

// Result is what a cycle recognized and translated
type Result struct {
	Text         string
	Translations language.Translations
}

// Run executes one cycle. A malformed OCR response aborts before any
// translation or speech.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	image, err := r.Source.Capture(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to capture image: %w", err)
	}

	prep := r.Prepare
	prep.CropBottom = opts.HalfScreen
	prep.ColorCorrect = opts.ColorCorrection
	image, err = imageprep.Prepare(image, prep)
	if err != nil {
		return res, fmt.Errorf("failed to prepare image: %w", err)
	}

	detections, err := r.Provider.Detect(ctx, image, providers.Options{Debug: opts.Debug})
	if err != nil {
		return res, fmt.Errorf("OCR failed: %w", err)
	}

	res.Text, err = r.Reconstructor.Reconstruct(detections)
	if err != nil {
		return res, fmt.Errorf("failed to reconstruct text: %w", err)
	}
	slog.Debug("Reconstructed text", "provider", r.Provider.Name(), "lines", len(detections), "length", len(res.Text))

	fmt.Fprintf(r.Out, "%s\n\n", res.Text)
	if res.Text == "" {
		slog.Info("No text detected.")
		return res, nil
	}

	res.Translations = language.Translations{}
	g, gctx := errgroup.WithContext(ctx)
	if opts.Translate && r.Translator != nil {
		g.Go(func() error {
			t, err := r.Translator.Translate(gctx, res.Text, language.TranslationTargets)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			res.Translations = t
			return nil
		})
	}

	speakErr := r.speak(gctx, res.Text, language.Japanese)
	if err := g.Wait(); err != nil {
		return res, err
	}
	if speakErr != nil {
		return res, speakErr
	}

	for _, lang := range language.TranslationTargets {
		text := res.Translations[lang]
		if text == "" {
			continue
		}
		fmt.Fprintf(r.Out, "%s\n\n", text)

		if (lang == language.English && opts.PlaybackEnglish) || (lang == language.Finnish && opts.PlaybackFinnish) {
			if err := r.speak(ctx, text, lang); err != nil {
				return res, err
			}
		}
	}

	return res, nil
}

func (r *Runner) speak(ctx context.Context, text string, lang language.Language) error {
	if r.Synthesizer == nil {
		slog.Debug("Speech disabled", "language", lang)
		return nil
	}

	audio, err := r.Synthesizer.Synthesize(ctx, text, lang)
	if err != nil {
		return fmt.Errorf("speech synthesis (%s) failed: %w", lang.Code(), err)
	}
	if err := os.WriteFile(r.AudioPath, audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	if r.Player == nil {
		return nil
	}
	if err := r.Player.Play(ctx, r.AudioPath); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}
