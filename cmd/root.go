package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/capread/internal/config"
	"github.com/spf13/cobra"
)

// cfg is loaded once before any subcommand runs
var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:   "capread",
	Short: "Read on-screen Japanese text aloud",
	Long: `Capture a frame, OCR the Japanese text in it, reconstruct the reading
order, translate it and speak the result.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		ll, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}

		switch strings.ToUpper(ll) {
		case "DEBUG":
			level = slog.LevelDebug
		case "WARN":
			level = slog.LevelWarn
		case "ERROR":
			level = slog.LevelError
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		handler := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(handler)

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		slog.Debug("Loaded configuration", "path", configPath, "provider", cfg.Provider)

		return nil
	},
}

func init() {
	ll := os.Getenv("LOG_LEVEL")
	if ll == "" {
		ll = "INFO"
	}
	RootCmd.PersistentFlags().String("log-level", ll, "The logging level for the command")
	RootCmd.PersistentFlags().String("config", os.Getenv("CAPREAD_CONFIG"), "Path to a YAML config file")
}
