package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/capread/pkg/azure"
	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/spf13/cobra"
)

var evalSavedCmd = &cobra.Command{
	Use:   "eval-saved",
	Short: "Evaluate line reconstruction on saved OCR responses",
	Long: `Evaluate line reconstruction offline against saved Azure OCR responses,
without calling any OCR service. Useful for tuning --name-offset.

This command expects a CSV file with 2 columns:
  response,transcript

Where:
  - response: path to a saved Azure OCR JSON response
  - transcript: path to the ground truth transcript

Example:
  capread eval-saved --csv responses.csv --name-offset 80 --dir ./fixtures`,
	RunE: runEvalSaved,
}

var (
	evalSavedCSVPath    string
	evalSavedName       string
	evalSavedDir        string
	evalSavedRows       []int
	evalSavedNameOffset int
)

func init() {
	RootCmd.AddCommand(evalSavedCmd)

	evalSavedCmd.Flags().StringVarP(&evalSavedCSVPath, "csv", "c", "", "Path to CSV file with saved responses (required)")
	evalSavedCmd.Flags().StringVarP(&evalSavedName, "name", "n", "", "Name for this run, used as the summary file name")
	evalSavedCmd.Flags().StringVar(&evalSavedDir, "dir", "./", "Prepend your CSV file paths with a directory")
	evalSavedCmd.Flags().IntSliceVar(&evalSavedRows, "rows", []int{}, "A list of row numbers to process")
	evalSavedCmd.Flags().IntVar(&evalSavedNameOffset, "name-offset", -1, "Speaker name indent in pixels (default from config)")

	if err := evalSavedCmd.MarkFlagRequired("csv"); err != nil {
		panic(err)
	}
}

func runEvalSaved(cmd *cobra.Command, args []string) error {
	config := EvalConfig{
		Provider:   "saved",
		CSVPath:    evalSavedCSVPath,
		Dir:        evalSavedDir,
		NameOffset: cfg.Reconstruct.NameOffset,
		TestRows:   evalSavedRows,
		Timestamp:  time.Now().Format("2006-01-02_15-04-05"),
	}
	if evalSavedNameOffset >= 0 {
		config.NameOffset = evalSavedNameOffset
	}

	filename := fmt.Sprintf("saved_%s.yaml", config.Timestamp)
	if evalSavedName != "" {
		filename = strings.ReplaceAll(evalSavedName, ":", "_") + ".yaml"
	}

	return runEvaluation(cmd.Context(), config, savedTranscriber(config.NameOffset), filename)
}

// savedTranscriber reconstructs text from a saved Azure OCR response
func savedTranscriber(nameOffset int) transcribeFunc {
	reconstructor := lines.New(nameOffset)
	return func(ctx context.Context, path string) (string, error) {
		body, err := readInput(ctx, path)
		if err != nil {
			return "", fmt.Errorf("failed to read OCR response: %w", err)
		}
		detections, err := azure.ParseOCRResponse(body)
		if err != nil {
			return "", err
		}
		return reconstructor.Reconstruct(detections)
	}
}
