package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/researchrag/internal/paper"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <paper-id>",
		Short: "Download the analysis as PDF or Markdown",
		Long: `Export fetches a rendered copy of the analysis and saves it in the download
directory under the name the service suggests. Existing files are never
overwritten; a numbered name is chosen instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("format")
			format, err := paper.ParseFormat(raw)
			if err != nil {
				return err
			}
			download, err := a.exporter(a.cfg.DownloadDir).Export(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", download)
			return nil
		},
	}
	cmd.Flags().String("format", string(paper.FormatPDF), "export format: pdf or markdown")
	return cmd
}
