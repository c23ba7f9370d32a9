package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "imagenamer",
		Short: "Rename images with names suggested by a vision LLM",
		Long: `Imagenamer sends each image to a vision-capable LLM together with a naming
instruction and copies the image under the name the model returns.

It can run as a small web interface (serve) or rename a local directory (rename).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if !cmd.Flags().Changed("log-level") {
				if env := os.Getenv("LOG_LEVEL"); env != "" {
					logLevel = env
				}
			}
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("config", "", "Path to an optional YAML config file")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRenameCmd())

	return cmd
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
