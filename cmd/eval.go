package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/capread/internal/utils"
	"github.com/lehigh-university-libraries/capread/pkg/imageprep"
	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v3"
)

type EvalConfig struct {
	Provider        string `yaml:"provider"`
	CSVPath         string `yaml:"csv_path"`
	Dir             string `yaml:"dir"`
	HalfScreen      bool   `yaml:"half_screen"`
	ColorCorrection bool   `yaml:"color_correction"`
	Threshold       int    `yaml:"threshold"`
	NameOffset      int    `yaml:"name_offset"`
	TestRows        []int  `yaml:"rows"`
	Timestamp       string `yaml:"timestamp"`
}

type EvalResult struct {
	Identifier     string `yaml:"identifier"`
	InputPath      string `yaml:"input_path"`
	TranscriptPath string `yaml:"transcript_path"`
	Reconstructed  string `yaml:"reconstructed"`
	Metrics        `yaml:",inline"`
}

type EvalSummary struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// transcribeFunc turns the input named in a CSV row into reconstructed text
type transcribeFunc func(ctx context.Context, path string) (string, error)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate OCR and line reconstruction against ground truth",
	Long: `Run every image in a CSV file through the configured OCR provider and
line reconstruction, then compare the result with a ground truth transcript.

The CSV has 2 columns:
  image,transcript

You can either provide individual flags or rerun a previous evaluation summary.`,
	RunE: runEval,
}

var (
	evalCSVPath    string
	evalRerunPath  string
	evalDir        string
	evalRows       []int
	evalHalf       bool
	evalColor      bool
	evalNameOffset int
	evalProvider   string
	evalsDir       = "evals"
)

func init() {
	RootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalCSVPath, "csv", "c", "", "Path to CSV file with evaluation data")
	evalCmd.Flags().StringVar(&evalRerunPath, "rerun", "", "Path to previous evaluation summary to rerun")
	evalCmd.Flags().StringVar(&evalDir, "dir", "./", "Prepend your CSV file paths with a directory")
	evalCmd.Flags().IntSliceVar(&evalRows, "rows", []int{}, "A list of row numbers to run the test on")
	evalCmd.Flags().BoolVar(&evalHalf, "half", false, "Only OCR the bottom part of each image")
	evalCmd.Flags().BoolVar(&evalColor, "color-correction", false, "Grayscale and threshold each image before OCR")
	evalCmd.Flags().IntVar(&evalNameOffset, "name-offset", -1, "Speaker name indent in pixels (default from config)")
	evalCmd.Flags().StringVar(&evalProvider, "provider", "", "OCR provider: azure, google or tesseract (overrides config)")

	evalCmd.MarkFlagsOneRequired("csv", "rerun")
	evalCmd.MarkFlagsMutuallyExclusive("csv", "rerun")
}

func runEval(cmd *cobra.Command, args []string) error {
	var config EvalConfig
	var err error

	if evalRerunPath != "" {
		config, err = loadEvalConfig(evalRerunPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fmt.Printf("Loaded configuration from %s\n", evalRerunPath)
	} else {
		config = EvalConfig{
			Provider:        cfg.Provider,
			CSVPath:         evalCSVPath,
			Dir:             evalDir,
			HalfScreen:      evalHalf,
			ColorCorrection: evalColor,
			Threshold:       cfg.Prepare.Threshold,
			NameOffset:      cfg.Reconstruct.NameOffset,
			TestRows:        evalRows,
			Timestamp:       time.Now().Format("2006-01-02_15-04-05"),
		}
		if evalProvider != "" {
			config.Provider = evalProvider
		}
		if evalNameOffset >= 0 {
			config.NameOffset = evalNameOffset
		}
	}

	cfg.Provider = config.Provider
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	provider, cleanup, err := newProvider(ctx, cfg)
	if err != nil {
		return utils.MaskSensitiveError(err)
	}
	defer cleanup()

	transcribe := ocrTranscriber(provider, config, cfg.Prepare.CropFraction)
	return runEvaluation(ctx, config, transcribe, fmt.Sprintf("eval_%s.yaml", config.Timestamp))
}

// runEvaluation scores every selected row and writes the summary under evalsDir
func runEvaluation(ctx context.Context, config EvalConfig, transcribe transcribeFunc, filename string) error {
	if err := os.MkdirAll(evalsDir, 0755); err != nil {
		return fmt.Errorf("failed to create evals directory: %w", err)
	}

	results, err := processEvaluation(ctx, config, transcribe)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	summary := EvalSummary{
		Config:  config,
		Results: results,
	}

	outputPath := filepath.Join(evalsDir, filename)
	if err := saveEvalResults(summary, outputPath); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Printf("\nEvaluation completed. Results saved to: %s\n", outputPath)
	printSummaryStats(results)

	return nil
}

func loadEvalConfig(configPath string) (EvalConfig, error) {
	var summary EvalSummary

	data, err := os.ReadFile(configPath)
	if err != nil {
		return EvalConfig{}, err
	}

	if err := yaml.Unmarshal(data, &summary); err != nil {
		return EvalConfig{}, err
	}

	// Update timestamp for rerun
	summary.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")

	return summary.Config, nil
}

// ocrTranscriber runs an image through preparation, OCR and reconstruction
func ocrTranscriber(provider providers.Provider, config EvalConfig, cropFraction float64) transcribeFunc {
	prep := imageprep.Options{
		CropBottom:   config.HalfScreen,
		CropFraction: cropFraction,
		ColorCorrect: config.ColorCorrection,
		Threshold:    uint8(config.Threshold),
	}
	reconstructor := lines.New(config.NameOffset)

	return func(ctx context.Context, path string) (string, error) {
		image, err := readInput(ctx, path)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		image, err = imageprep.Prepare(image, prep)
		if err != nil {
			return "", fmt.Errorf("failed to prepare image: %w", err)
		}
		detections, err := provider.Detect(ctx, image, providers.Options{})
		if err != nil {
			return "", fmt.Errorf("OCR failed: %w", err)
		}
		return reconstructor.Reconstruct(detections)
	}
}

func processEvaluation(ctx context.Context, config EvalConfig, transcribe transcribeFunc) ([]EvalResult, error) {
	file, err := os.Open(config.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	// Skip header row if present
	dataRows := records
	switch strings.ToLower(strings.TrimSpace(records[0][0])) {
	case "image", "response":
		dataRows = records[1:]
	}

	var results []EvalResult
	for i, row := range dataRows {
		if len(config.TestRows) > 0 && !slices.Contains(config.TestRows, i) {
			slog.Debug("Skipping row", "row", i+1)
			continue
		}
		if len(row) < 2 {
			slog.Warn("Insufficient columns", "row", i+1, "columns", len(row))
			continue
		}

		result, err := processRow(ctx, row, config.Dir, transcribe)
		if err != nil {
			slog.Error("Error processing row", "row", i+1, "err", utils.MaskSensitiveError(err))
			continue
		}

		results = append(results, result)
		printRowResult(result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no rows were successfully processed")
	}

	return results, nil
}

func processRow(ctx context.Context, row []string, dir string, transcribe transcribeFunc) (EvalResult, error) {
	inputPath := joinInputPath(dir, strings.TrimSpace(row[0]))
	transcriptPath := joinInputPath(dir, strings.TrimSpace(row[1]))

	groundTruth, err := readInput(ctx, transcriptPath)
	if err != nil {
		return EvalResult{}, fmt.Errorf("failed to read transcript: %w", err)
	}

	text, err := transcribe(ctx, inputPath)
	if err != nil {
		return EvalResult{}, err
	}

	return EvalResult{
		Identifier:     filepath.Base(inputPath),
		InputPath:      inputPath,
		TranscriptPath: transcriptPath,
		Reconstructed:  text,
		Metrics:        CalculateAccuracyMetrics(string(groundTruth), text),
	}, nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func joinInputPath(dir, path string) string {
	if isURL(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// readInput reads a local file or fetches a URL
func readInput(ctx context.Context, path string) ([]byte, error) {
	if !isURL(path) {
		return os.ReadFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func saveEvalResults(summary EvalSummary, outputPath string) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}

	return os.WriteFile(outputPath, data, 0644)
}

func printRowResult(result EvalResult) {
	fmt.Printf("\n=== Results for %s ===\n", result.Identifier)
	fmt.Printf("Input: %s\n", result.InputPath)
	fmt.Printf("Transcript: %s\n", result.TranscriptPath)
	fmt.Printf("Reconstructed: %s\n", result.Reconstructed)
	fmt.Printf("Character Similarity: %.3f\n", result.CharacterSimilarity)
	fmt.Printf("Character Error Rate: %.3f\n", result.CharacterErrorRate)
	fmt.Printf("Length (Expected/Actual): %d/%d\n", result.ExpectedLength, result.ActualLength)
	fmt.Printf("Correct Characters: %d\n", result.CorrectCharacters)
	fmt.Printf("Substitutions: %d\n", result.Substitutions)
	fmt.Printf("Deletions: %d\n", result.Deletions)
	fmt.Printf("Insertions: %d\n", result.Insertions)
}

func printSummaryStats(results []EvalResult) {
	if len(results) == 0 {
		return
	}

	var totalSim, totalCER float64
	exact := 0
	for _, result := range results {
		totalSim += result.CharacterSimilarity
		totalCER += result.CharacterErrorRate
		if result.Substitutions+result.Deletions+result.Insertions == 0 {
			exact++
		}
	}

	count := float64(len(results))

	fmt.Printf("\n=== SUMMARY STATISTICS ===\n")
	fmt.Printf("Total Evaluations: %d\n", len(results))
	fmt.Printf("Exact Matches: %d\n", exact)
	fmt.Printf("Average Character Similarity: %.3f\n", totalSim/count)
	fmt.Printf("Average Character Error Rate: %.3f\n", totalCER/count)
}
