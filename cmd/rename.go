package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/imagenamer/internal/models"
	"github.com/lehigh-university-libraries/imagenamer/internal/report"
	"github.com/spf13/cobra"
)

func newRenameCmd() *cobra.Command {
	var prompt string
	var reportPath string

	cmd := &cobra.Command{
		Use:   "rename <dir>",
		Short: "Rename every image in a local directory",
		Long: `Sends every image in <dir> to the configured vision model and copies it
into the renamed directory under the suggested name.

Unsupported files are reported and skipped. Use --report to keep a record of
the batch as YAML, JSON or Parquet.`,
		Example: `  # Rename scans with the default instruction
  imagenamer rename ./scans

  # Custom instruction and a parquet report
  imagenamer rename ./scans --prompt "按发票号命名" --report reports/scans.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			_, service, err := newService(cfg)
			if err != nil {
				return err
			}

			result, err := service.ProcessDirectory(cmd.Context(), prompt, args[0])
			if err != nil {
				return err
			}

			for _, r := range result.Results {
				if r.Status == models.StatusSuccess {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", r.OriginalName, r.NewName)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.OriginalName, r.Message)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d renamed\n", result.SuccessCount, result.TotalProcessed)

			if reportPath != "" {
				doc := report.NewDocument(report.RunInfo{
					Provider: cfg.Provider,
					Model:    cfg.Model,
					Prompt:   prompt,
					InputDir: args[0],
				}, result)
				if err := report.Write(reportPath, doc); err != nil {
					return err
				}
				slog.Info("Report saved", "path", reportPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Naming instruction (defaults to the built-in instruction)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a batch report (.yaml, .json or .parquet)")

	return cmd
}
