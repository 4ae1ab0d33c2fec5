package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/lehigh-university-libraries/capread/pkg/azure"
	"github.com/lehigh-university-libraries/capread/pkg/lines"
	"github.com/spf13/cobra"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct [response.json]",
	Short: "Rebuild text from a saved Azure OCR response",
	Long: `Read an Azure OCR JSON response from a file (or stdin when no file or "-"
is given) and print the text in reading order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReconstruct,
}

var nameOffset int

func init() {
	RootCmd.AddCommand(reconstructCmd)

	reconstructCmd.Flags().IntVar(&nameOffset, "name-offset", -1, "Horizontal indent in pixels that marks the first line as a speaker name (default from config)")
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	var (
		body []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read OCR response: %w", err)
	}

	detections, err := azure.ParseOCRResponse(body)
	if err != nil {
		return err
	}

	offset := cfg.Reconstruct.NameOffset
	if nameOffset >= 0 {
		offset = nameOffset
	}
	text, err := lines.New(offset).Reconstruct(detections)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
